package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
	"github.com/rocketscienceinc/quatro-backend/internal/entity"
	"github.com/rocketscienceinc/quatro-backend/internal/repository"
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		that.sendError(c, msg.Action, nil, "invalid payload")
		return nil
	}

	game, err := that.games.StartGame(ctx, payloadReq.Player1, payloadReq.Player2)
	if errors.Is(err, apperror.ErrInvalidPlayerName) {
		that.sendError(c, msg.Action, nil, err.Error())
		return nil
	}

	if err != nil {
		that.sendError(c, msg.Action, nil, "failed to create a new game")
		return fmt.Errorf("failed to start game: %w", err)
	}

	that.subscribe(c, game.ID)
	that.send(c, msg.Action, newGamePayload(game))

	log.Info("game created", "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, ok := that.decodeGamePayload(msg, c)
	if !ok {
		return nil
	}

	game, err := that.games.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return that.respondFailure(c, msg.Action, game, err)
	}

	that.subscribe(c, game.ID)
	that.send(c, msg.Action, newGamePayload(game))

	log.Info("subscribed to game", "gameID", game.ID, "subscribers", that.subscribers(game.ID))

	return nil
}

func (that *Server) handleSelect(ctx context.Context, msg *Message, c *client) error {
	payloadReq, ok := that.decodeGamePayload(msg, c)
	if !ok {
		return nil
	}

	if payloadReq.Piece == nil {
		that.sendError(c, msg.Action, nil, "piece is required")
		return nil
	}

	return that.applyEvent(ctx, msg.Action, payloadReq.GameID, entity.SelectEvent(*payloadReq.Piece), c)
}

func (that *Server) handlePlace(ctx context.Context, msg *Message, c *client) error {
	payloadReq, ok := that.decodeGamePayload(msg, c)
	if !ok {
		return nil
	}

	if payloadReq.Row == nil || payloadReq.Col == nil {
		that.sendError(c, msg.Action, nil, "row and col are required")
		return nil
	}

	return that.applyEvent(ctx, msg.Action, payloadReq.GameID, entity.PlaceEvent(*payloadReq.Row, *payloadReq.Col), c)
}

func (that *Server) handleRestart(ctx context.Context, msg *Message, c *client) error {
	payloadReq, ok := that.decodeGamePayload(msg, c)
	if !ok {
		return nil
	}

	return that.applyEvent(ctx, msg.Action, payloadReq.GameID, entity.RestartEvent(), c)
}

// handleLeave - ends the game and tells every subscriber it is gone.
func (that *Server) handleLeave(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleLeave")

	payloadReq, ok := that.decodeGamePayload(msg, c)
	if !ok {
		return nil
	}

	if err := that.games.EndGame(ctx, payloadReq.GameID); err != nil {
		return that.respondFailure(c, msg.Action, nil, err)
	}

	that.broadcast(payloadReq.GameID, msg.Action, Payload{GameID: payloadReq.GameID})
	that.dropSubscriptions(payloadReq.GameID)

	if c.gameID == payloadReq.GameID {
		c.gameID = ""
	} else {
		that.send(c, msg.Action, Payload{GameID: payloadReq.GameID})
	}

	log.Info("game left", "gameID", payloadReq.GameID)

	return nil
}

func (that *Server) applyEvent(ctx context.Context, action, gameID string, event entity.Event, c *client) error {
	game, err := that.games.Apply(ctx, gameID, event)
	if err != nil {
		return that.respondFailure(c, action, game, err)
	}

	if c.gameID != game.ID {
		that.subscribe(c, game.ID)
	}

	that.broadcast(game.ID, action, newGamePayload(game))

	return nil
}

// respondFailure - answers the sender only; infrastructure errors are returned for logging.
func (that *Server) respondFailure(c *client, action string, game *entity.Game, err error) error {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		that.sendError(c, action, nil, "game not found")
		return nil
	case errors.Is(err, apperror.ErrInvalidPlayerName), apperror.IsIllegalOperation(err):
		that.sendError(c, action, game, err.Error())
		return nil
	default:
		that.sendError(c, action, nil, "internal server error")
		return err
	}
}

func (that *Server) decodeGamePayload(msg *Message, c *client) (Payload, bool) {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		that.sendError(c, msg.Action, nil, "invalid payload")
		return Payload{}, false
	}

	if payloadReq.GameID == "" {
		that.sendError(c, msg.Action, nil, "game_id is required")
		return Payload{}, false
	}

	return payloadReq, true
}

func (that *Server) dropSubscriptions(gameID string) {
	that.subscriptionsMutex.Lock()
	defer that.subscriptionsMutex.Unlock()

	delete(that.subscriptions, gameID)
}
