package entity

import (
	"fmt"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
)

type (
	Color string
	Shape string
)

const (
	White Color = "white"
	Black Color = "black"

	Circle Shape = "circle"
	Square Shape = "square"
)

// Piece is one of the four trait combinations. Pieces are values and can be placed any number of times.
type Piece struct {
	Color Color `json:"color"`
	Shape Shape `json:"shape"`
}

// AllPieces - every piece a player can pick from, in the order the selector shows them.
var AllPieces = [4]Piece{
	{Color: White, Shape: Circle},
	{Color: White, Shape: Square},
	{Color: Black, Shape: Circle},
	{Color: Black, Shape: Square},
}

func (that Piece) Validate() error {
	if that.Color != White && that.Color != Black {
		return fmt.Errorf("%w: color %q", apperror.ErrInvalidPiece, that.Color)
	}

	if that.Shape != Circle && that.Shape != Square {
		return fmt.Errorf("%w: shape %q", apperror.ErrInvalidPiece, that.Shape)
	}

	return nil
}

func (that Piece) String() string {
	return string(that.Color) + " " + string(that.Shape)
}

// ShareTrait reports whether every piece is present and all of them agree on color or on shape.
func ShareTrait(pieces ...*Piece) bool {
	if len(pieces) == 0 {
		return false
	}

	for _, piece := range pieces {
		if piece == nil {
			return false
		}
	}

	sameColor, sameShape := true, true
	for _, piece := range pieces[1:] {
		sameColor = sameColor && piece.Color == pieces[0].Color
		sameShape = sameShape && piece.Shape == pieces[0].Shape
	}

	return sameColor || sameShape
}
