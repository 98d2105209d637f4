package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
)

const (
	actionNewGame = "game:new"
	actionJoin    = "game:join"
	actionSelect  = "game:select"
	actionPlace   = "game:place"
	actionRestart = "game:restart"
	actionLeave   = "game:leave"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	GameID     string        `json:"game_id,omitempty"`
	Player1    string        `json:"player1,omitempty"`
	Player2    string        `json:"player2,omitempty"`
	Piece      *entity.Piece `json:"piece,omitempty"`
	Row        *int          `json:"row,omitempty"`
	Col        *int          `json:"col,omitempty"`
	Game       *entity.Game  `json:"game,omitempty"`
	StatusLine string        `json:"status_line,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func newGamePayload(game *entity.Game) Payload {
	if game == nil {
		return Payload{}
	}

	return Payload{
		GameID:     game.ID,
		Game:       game,
		StatusLine: game.StatusLine(),
	}
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
