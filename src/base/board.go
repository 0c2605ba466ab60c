package base

import (
	"errors"
	"fmt"
)

// MoveCandidate is a legal transition as asserted by the rule engine.
type MoveCandidate struct {
	From Square
	To   Square
	Kind MoveKind
}

func (m MoveCandidate) String() string {
	return fmt.Sprintf("%s->%s (%s)", m.From, m.To, m.Kind)
}

type Piece struct {
	Position   Square
	Side       Side
	Role       Role
	LegalMoves []MoveCandidate
}

// MoveTo finds the candidate landing on sq. A candidate that ends on the
// piece's own square never matches.
func (p *Piece) MoveTo(sq Square) (MoveCandidate, bool) {
	if sq == p.Position {
		return MoveCandidate{}, false
	}
	for _, mv := range p.LegalMoves {
		if mv.To == sq {
			return mv, true
		}
	}
	return MoveCandidate{}, false
}

// BoardState is the client's mirror of the authoritative position. It is
// never mutated after construction; a refresh replaces it as a whole.
type BoardState struct {
	Pieces     [2][]*Piece // indexed by Side
	ActiveSide Side
	Halfmoves  int
	Fullmoves  int
	Scores     [2]float64
	Advantages [2]float64
	Phase      Phase
}

var ErrDuplicateSquare = errors.New("two pieces on one square")

func (b *BoardState) PieceAt(sq Square) *Piece {
	if b == nil {
		return nil
	}
	for _, side := range b.Pieces {
		for _, p := range side {
			if p.Position == sq {
				return p
			}
		}
	}
	return nil
}

func (b *BoardState) ActivePieces() []*Piece {
	if b == nil {
		return nil
	}
	return b.Pieces[b.ActiveSide]
}

// LegalMoveCount sums the candidates of every active-side piece.
func (b *BoardState) LegalMoveCount() int {
	n := 0
	for _, p := range b.ActivePieces() {
		n += len(p.LegalMoves)
	}
	return n
}

// Validate checks the structural invariants: valid squares, one piece per
// square, and every candidate starting on its piece.
func (b *BoardState) Validate() error {
	var seen [64]bool
	for side, pieces := range b.Pieces {
		for _, p := range pieces {
			if p.Side != Side(side) {
				return fmt.Errorf("piece at %v listed under %v", p.Position, Side(side))
			}
			if !p.Position.Valid() {
				return fmt.Errorf("piece outside board: %v", p.Position)
			}
			idx := p.Position.ServerIndex()
			if seen[idx] {
				return fmt.Errorf("%w: %v", ErrDuplicateSquare, p.Position)
			}
			seen[idx] = true
			for _, mv := range p.LegalMoves {
				if mv.From != p.Position || !mv.To.Valid() {
					return fmt.Errorf("bad candidate %v for piece at %v", mv, p.Position)
				}
			}
		}
	}
	return nil
}

// Occupancy returns the occupied squares as bitboard rows.
func (b *BoardState) Occupancy() [8]uint8 {
	var sqs []Square
	for _, side := range b.Pieces {
		for _, p := range side {
			sqs = append(sqs, p.Position)
		}
	}
	return EncodeBitboardRows(sqs)
}

// Suggestion is the engine's recommended move, bound to the board
// generation it was computed against.
type Suggestion struct {
	Move       MoveCandidate
	Generation uint64
}
