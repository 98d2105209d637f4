package entity

import (
	"fmt"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
)

type EventType string

const (
	EventSelect  EventType = "select"
	EventPlace   EventType = "place"
	EventRestart EventType = "restart"
)

// Event is a single state transition request coming from the UI.
type Event struct {
	Type  EventType `json:"type"`
	Piece Piece     `json:"piece"`
	Row   int       `json:"row,omitempty"`
	Col   int       `json:"col,omitempty"`
}

func SelectEvent(piece Piece) Event {
	return Event{Type: EventSelect, Piece: piece}
}

func PlaceEvent(row, col int) Event {
	return Event{Type: EventPlace, Row: row, Col: col}
}

func RestartEvent() Event {
	return Event{Type: EventRestart}
}

// Apply routes the event to the matching operation.
func (that *Game) Apply(event Event) error {
	switch event.Type {
	case EventSelect:
		return that.SelectPiece(event.Piece)
	case EventPlace:
		return that.PlacePiece(event.Row, event.Col)
	case EventRestart:
		that.Restart()
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownEvent, event.Type)
	}
}
