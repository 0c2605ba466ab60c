package session

import "chessview/src/base"

type Outcome int

const (
	Ignored Outcome = iota
	Selected
	Deselected
	Submitted
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Selected:
		return "selected"
	case Deselected:
		return "deselected"
	case Submitted:
		return "submitted"
	default:
		return "invalid"
	}
}

// Transition is the result of one click. Piece and Move are set for
// Submitted, Piece alone for Selected. Err is set when a move was produced
// but could not be sent.
type Transition struct {
	Outcome Outcome
	Piece   *base.Piece
	Move    base.MoveCandidate
	Err     error
}

// Selection is the Idle / Selected(piece) state machine. The highlighted
// piece is a weak reference into the board of generation gen.
type Selection struct {
	piece *base.Piece
	gen   uint64
}

func (s *Selection) Piece() *base.Piece { return s.piece }
func (s *Selection) Idle() bool         { return s.piece == nil }
func (s *Selection) Clear()             { s.piece, s.gen = nil, 0 }

// Click resolves a click on sq. While a piece is selected the checks run in
// a fixed order: legal destination, own square, anything else. Every one of
// them ends in Idle.
func (s *Selection) Click(board *base.BoardState, gen uint64, sq base.Square) Transition {
	if p := s.piece; p != nil {
		if mv, ok := p.MoveTo(sq); ok {
			s.Clear()
			return Transition{Outcome: Submitted, Piece: p, Move: mv}
		}
		if sq == p.Position {
			s.Clear()
			return Transition{Outcome: Deselected}
		}
		// not reinterpreted as a new selection
		s.Clear()
		return Transition{Outcome: Deselected}
	}

	if board == nil || board.Phase.Terminal() {
		return Transition{Outcome: Ignored}
	}
	p := board.PieceAt(sq)
	if p == nil || p.Side != board.ActiveSide || len(p.LegalMoves) == 0 {
		return Transition{Outcome: Ignored}
	}
	s.piece, s.gen = p, gen
	return Transition{Outcome: Selected, Piece: p}
}

// Revalidate rebinds the highlight to the replacement board. The selection
// survives only if the same piece still stands on its square, belongs to
// the side to move and still has somewhere to go.
func (s *Selection) Revalidate(board *base.BoardState, gen uint64) {
	if s.piece == nil || s.gen == gen {
		return
	}
	old := s.piece
	np := board.PieceAt(old.Position)
	if np == nil || board.Phase.Terminal() ||
		np.Side != old.Side || np.Role != old.Role ||
		np.Side != board.ActiveSide || len(np.LegalMoves) == 0 {
		s.Clear()
		return
	}
	s.piece, s.gen = np, gen
}
