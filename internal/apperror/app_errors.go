package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrNoPieceSelected   = errors.New("no piece selected")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrInvalidPiece      = errors.New("invalid piece")
	ErrInvalidPlayerName = errors.New("player name must not be blank")
	ErrUnknownEvent      = errors.New("unknown event")
)

// IsIllegalOperation reports whether err was caused by a move the rules do not allow.
// The game state is left untouched whenever such an error is returned.
func IsIllegalOperation(err error) bool {
	return errors.Is(err, ErrGameFinished) ||
		errors.Is(err, ErrNoPieceSelected) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrInvalidCell) ||
		errors.Is(err, ErrInvalidPiece) ||
		errors.Is(err, ErrUnknownEvent)
}
