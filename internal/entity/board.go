package entity

const (
	BoardSize  = 4
	BoardCells = BoardSize * BoardSize
)

// Line - the four cell indexes of a row, column, diagonal or 2x2 block.
type Line [BoardSize]int

// Board is addressed by row*BoardSize+col; a nil entry is an empty cell.
type Board [BoardCells]*Piece

func CellIndex(row, col int) int {
	return row*BoardSize + col
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (that *Board) Cell(row, col int) *Piece {
	return that[CellIndex(row, col)]
}

func (that *Board) IsEmpty(row, col int) bool {
	return that.Cell(row, col) == nil
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == nil {
			return false
		}
	}

	return true
}

// CandidateLines returns every line a piece at (row, col) can complete:
// its row, its column, the diagonals it lies on and each 2x2 block containing it.
func CandidateLines(row, col int) []Line {
	lines := make([]Line, 0, 8)

	var horizontal, vertical Line
	for i := range BoardSize {
		horizontal[i] = CellIndex(row, i)
		vertical[i] = CellIndex(i, col)
	}
	lines = append(lines, horizontal, vertical)

	if row == col {
		var diagonal Line
		for i := range BoardSize {
			diagonal[i] = CellIndex(i, i)
		}
		lines = append(lines, diagonal)
	}

	if row+col == BoardSize-1 {
		var antiDiagonal Line
		for i := range BoardSize {
			antiDiagonal[i] = CellIndex(i, BoardSize-1-i)
		}
		lines = append(lines, antiDiagonal)
	}

	for _, top := range []int{row - 1, row} {
		for _, left := range []int{col - 1, col} {
			if top < 0 || left < 0 || top+1 >= BoardSize || left+1 >= BoardSize {
				continue
			}

			lines = append(lines, Line{
				CellIndex(top, left), CellIndex(top, left+1),
				CellIndex(top+1, left), CellIndex(top+1, left+1),
			})
		}
	}

	return lines
}

// WinningLine looks for a completed line through (row, col) whose pieces share a trait.
// It only reads the board, so it can be evaluated at any time after the placement.
func (that *Board) WinningLine(row, col int) (Line, bool) {
	for _, line := range CandidateLines(row, col) {
		if ShareTrait(that[line[0]], that[line[1]], that[line[2]], that[line[3]]) {
			return line, true
		}
	}

	return Line{}, false
}
