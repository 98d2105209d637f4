package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
)

const emptyCell = '.'

// Symbol - one character per piece: o/O for white/black circles, s/S for white/black squares.
func Symbol(piece *entity.Piece) rune {
	if piece == nil {
		return emptyCell
	}

	symbol := 'o'
	if piece.Shape == entity.Square {
		symbol = 's'
	}

	if piece.Color == entity.Black {
		symbol -= 'a' - 'A'
	}

	return symbol
}

// Render writes the board, the status line and the current selection.
// Cells of a winning line are wrapped in brackets.
func Render(w io.Writer, game *entity.Game) error {
	winning := make(map[int]bool, len(game.WinningLine))
	for _, idx := range game.WinningLine {
		winning[idx] = true
	}

	var sb strings.Builder

	sb.WriteString("   0  1  2  3\n")
	for row := range entity.BoardSize {
		fmt.Fprintf(&sb, "%d ", row)
		for col := range entity.BoardSize {
			idx := entity.CellIndex(row, col)
			if winning[idx] {
				fmt.Fprintf(&sb, "[%c]", Symbol(game.Board[idx]))
			} else {
				fmt.Fprintf(&sb, " %c ", Symbol(game.Board[idx]))
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%s\n", game.StatusLine())

	if game.Selected != nil {
		fmt.Fprintf(&sb, "Selected: %s (%c)\n", game.Selected, Symbol(game.Selected))
	} else {
		sb.WriteString("Selected: none\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to render game: %w", err)
	}

	return nil
}
