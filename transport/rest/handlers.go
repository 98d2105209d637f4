package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
	"github.com/rocketscienceinc/quatro-backend/internal/entity"
	"github.com/rocketscienceinc/quatro-backend/internal/repository"
)

type gameUseCase interface {
	StartGame(ctx context.Context, player1, player2 string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	SelectPiece(ctx context.Context, id string, piece entity.Piece) (*entity.Game, error)
	PlacePiece(ctx context.Context, id string, row, col int) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
	EndGame(ctx context.Context, id string) error
}

type StartGameRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type PlaceRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type GameResponse struct {
	Game       *entity.Game `json:"game,omitempty"`
	StatusLine string       `json:"status_line,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type GameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) *GameHandler {
	return &GameHandler{
		logger: logger.With("component", "game_handler"),
		games:  games,
	}
}

func (that *GameHandler) StartGame(ctx echo.Context) error {
	var req StartGameRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, GameResponse{Error: "invalid request body"})
	}

	game, err := that.games.StartGame(ctx.Request().Context(), req.Player1, req.Player2)
	if err != nil {
		return that.respondError(ctx, "StartGame", game, err)
	}

	return ctx.JSON(http.StatusCreated, newGameResponse(game))
}

func (that *GameHandler) GetGame(ctx echo.Context) error {
	game, err := that.games.GetGame(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.respondError(ctx, "GetGame", game, err)
	}

	return ctx.JSON(http.StatusOK, newGameResponse(game))
}

func (that *GameHandler) SelectPiece(ctx echo.Context) error {
	var piece entity.Piece
	if err := ctx.Bind(&piece); err != nil {
		return ctx.JSON(http.StatusBadRequest, GameResponse{Error: "invalid request body"})
	}

	game, err := that.games.SelectPiece(ctx.Request().Context(), ctx.Param("id"), piece)
	if err != nil {
		return that.respondError(ctx, "SelectPiece", game, err)
	}

	return ctx.JSON(http.StatusOK, newGameResponse(game))
}

func (that *GameHandler) PlacePiece(ctx echo.Context) error {
	var req PlaceRequest
	if err := ctx.Bind(&req); err != nil || req.Row == nil || req.Col == nil {
		return ctx.JSON(http.StatusBadRequest, GameResponse{Error: "row and col are required"})
	}

	game, err := that.games.PlacePiece(ctx.Request().Context(), ctx.Param("id"), *req.Row, *req.Col)
	if err != nil {
		return that.respondError(ctx, "PlacePiece", game, err)
	}

	return ctx.JSON(http.StatusOK, newGameResponse(game))
}

func (that *GameHandler) Restart(ctx echo.Context) error {
	game, err := that.games.Restart(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.respondError(ctx, "Restart", game, err)
	}

	return ctx.JSON(http.StatusOK, newGameResponse(game))
}

func (that *GameHandler) EndGame(ctx echo.Context) error {
	if err := that.games.EndGame(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return that.respondError(ctx, "EndGame", nil, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (that *GameHandler) respondError(ctx echo.Context, method string, game *entity.Game, err error) error {
	resp := newGameResponse(game)
	resp.Error = err.Error()

	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		return ctx.JSON(http.StatusNotFound, resp)
	case errors.Is(err, apperror.ErrInvalidPlayerName),
		errors.Is(err, apperror.ErrInvalidPiece),
		errors.Is(err, apperror.ErrInvalidCell):
		return ctx.JSON(http.StatusBadRequest, resp)
	case apperror.IsIllegalOperation(err):
		return ctx.JSON(http.StatusConflict, resp)
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		return ctx.JSON(http.StatusInternalServerError, GameResponse{Error: "internal server error"})
	}
}

func newGameResponse(game *entity.Game) GameResponse {
	if game == nil {
		return GameResponse{}
	}

	return GameResponse{
		Game:       game,
		StatusLine: game.StatusLine(),
	}
}
