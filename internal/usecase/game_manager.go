package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
	"github.com/rocketscienceinc/quatro-backend/internal/entity"
)

//go:generate mockery --name gameRepo --inpackage=false --output ../../mocks/usecase --outpkg usecase --with-expecter

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	newID func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		newID:    uuid.NewString,
	}
}

// StartGame - creates and stores a game for two named players.
func (that *GameManager) StartGame(ctx context.Context, player1, player2 string) (*entity.Game, error) {
	game, err := entity.NewGame(that.newID(), player1, player2)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Info("game started", "method", "StartGame", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) SelectPiece(ctx context.Context, id string, piece entity.Piece) (*entity.Game, error) {
	return that.apply(ctx, id, entity.SelectEvent(piece))
}

func (that *GameManager) PlacePiece(ctx context.Context, id string, row, col int) (*entity.Game, error) {
	return that.apply(ctx, id, entity.PlaceEvent(row, col))
}

func (that *GameManager) Restart(ctx context.Context, id string) (*entity.Game, error) {
	return that.apply(ctx, id, entity.RestartEvent())
}

// Apply runs a single event against the stored game.
// A rejected move returns the unchanged game along with the rule error.
func (that *GameManager) Apply(ctx context.Context, id string, event entity.Event) (*entity.Game, error) {
	return that.apply(ctx, id, event)
}

func (that *GameManager) EndGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game ended", "method", "EndGame", "gameID", id)

	return nil
}

func (that *GameManager) apply(ctx context.Context, id string, event entity.Event) (*entity.Game, error) {
	log := that.logger.With("method", "apply", "gameID", id, "event", event.Type)

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		return game.Apply(event)
	})
	if apperror.IsIllegalOperation(err) {
		log.Debug("move rejected", "error", err)
		return game, fmt.Errorf("failed to apply %s: %w", event.Type, err)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() && event.Type == entity.EventPlace {
		log.Info("game finished", "status", game.Status, "winner", game.Winner)
	} else {
		log.Debug("event applied", "status", game.Status, "turn", game.CurrentPlayer())
	}

	return game, nil
}
