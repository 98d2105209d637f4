package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusDraw    = "draw"

	// Draw is reported as the winner when the board fills up without a winning line.
	Draw = "Draw"

	startingPlayer = 0
)

type Game struct {
	ID          string    `json:"id"`
	Board       Board     `json:"board"`
	Players     [2]string `json:"players"`
	Turn        int       `json:"turn"`
	Selected    *Piece    `json:"selected_piece"`
	Status      string    `json:"status"`
	Winner      string    `json:"winner,omitempty"`
	WinningLine []int     `json:"winning_line,omitempty"`
}

// NewGame - creates a game for two players; player1 moves first.
func NewGame(id, player1, player2 string) (*Game, error) {
	player1, player2 = strings.TrimSpace(player1), strings.TrimSpace(player2)
	if player1 == "" || player2 == "" {
		return nil, apperror.ErrInvalidPlayerName
	}

	return &Game{
		ID:      id,
		Players: [2]string{player1, player2},
		Turn:    startingPlayer,
		Status:  StatusOngoing,
	}, nil
}

func (that *Game) CurrentPlayer() string {
	return that.Players[that.Turn]
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// SelectPiece - picks the piece for the next placement. Selecting is always allowed.
func (that *Game) SelectPiece(piece Piece) error {
	if err := piece.Validate(); err != nil {
		return err
	}

	that.Selected = &piece

	return nil
}

// PlacePiece - puts the selected piece on (row, col) and resolves the turn.
// On error the game is left exactly as it was.
func (that *Game) PlacePiece(row, col int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if !InBounds(row, col) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, row, col)
	}

	if that.Selected == nil {
		return apperror.ErrNoPieceSelected
	}

	if !that.Board.IsEmpty(row, col) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrCellOccupied, row, col)
	}

	piece := *that.Selected
	that.Board[CellIndex(row, col)] = &piece

	that.resolvePlacement(row, col)

	return nil
}

func (that *Game) resolvePlacement(row, col int) {
	if line, ok := that.Board.WinningLine(row, col); ok {
		that.Status = StatusWon
		that.Winner = that.CurrentPlayer()
		that.WinningLine = line[:]
		return
	}

	if that.Board.IsFull() {
		that.Status = StatusDraw
		that.Winner = Draw
		return
	}

	that.Turn = 1 - that.Turn
	that.Selected = nil
}

// Restart - clears the board and hands the first move back to the starting player.
func (that *Game) Restart() {
	that.Board = Board{}
	that.Turn = startingPlayer
	that.Selected = nil
	that.Status = StatusOngoing
	that.Winner = ""
	that.WinningLine = nil
}

func (that *Game) StatusLine() string {
	switch that.Status {
	case StatusWon:
		return that.Winner + " wins!"
	case StatusDraw:
		return "It's a draw!"
	default:
		return that.CurrentPlayer() + "'s turn"
	}
}
