package base

import (
	"fmt"
	"strings"
)

// Square is a cell in client orientation: File 0 is the A file and Rank 0 is
// the top row of the board as drawn (the eighth rank).
type Square struct {
	File int
	Rank int
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.File, s.Rank)
	}
	return s.Algebraic()
}

// ServerIndex converts to the engine's linear index, which counts from the
// first rank upwards: index = (7-rank)*8 + file.
func (s Square) ServerIndex() int {
	return (7-s.Rank)*8 + s.File
}

// SquareFromServerIndex is the inverse of ServerIndex.
func SquareFromServerIndex(idx int) (Square, error) {
	if idx < 0 || idx >= 64 {
		return Square{}, fmt.Errorf("invalid square index %d", idx)
	}
	return Square{File: idx % 8, Rank: 7 - idx/8}, nil
}

// Algebraic returns the upper-case name, e.g. "E4".
func (s Square) Algebraic() string {
	return string([]byte{byte('A' + s.File), byte('1' + 7 - s.Rank)})
}

func ParseAlgebraic(pos string) (Square, error) {
	pos = strings.ToUpper(strings.TrimSpace(pos))
	if len(pos) != 2 || pos[0] < 'A' || pos[0] > 'H' || pos[1] < '1' || pos[1] > '8' {
		return Square{}, fmt.Errorf("invalid position %q", pos)
	}
	return Square{File: int(pos[0] - 'A'), Rank: 7 - int(pos[1]-'1')}, nil
}

// AllSquares enumerates the board row by row from the top-left corner.
func AllSquares() []Square {
	sqs := make([]Square, 0, 64)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sqs = append(sqs, Square{File: file, Rank: rank})
		}
	}
	return sqs
}
