package engine

import (
	"fmt"
	"strconv"
	"strings"

	"chessview/src/base"
)

// Payload encodes a move for the engine: "<fromIndex>.<toIndex>.<kind>".
func Payload(mv base.MoveCandidate) string {
	return fmt.Sprintf("%d.%d.%d", mv.From.ServerIndex(), mv.To.ServerIndex(), mv.Kind)
}

func ParsePayload(payload string) (MoveDoc, error) {
	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return MoveDoc{}, fmt.Errorf("%w: payload %q", ErrBadDocument, payload)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return MoveDoc{}, fmt.Errorf("%w: payload %q", ErrBadDocument, payload)
		}
		nums[i] = n
	}
	return MoveDoc{From: nums[0], To: nums[1], Kind: nums[2]}, nil
}

func (m MoveDoc) Candidate() (base.MoveCandidate, error) {
	from, err := base.SquareFromServerIndex(m.From)
	if err != nil {
		return base.MoveCandidate{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	to, err := base.SquareFromServerIndex(m.To)
	if err != nil {
		return base.MoveCandidate{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if m.Kind < 0 || m.Kind > int(base.KingsideCastle) {
		return base.MoveCandidate{}, fmt.Errorf("%w: move kind %d", ErrBadDocument, m.Kind)
	}
	return base.MoveCandidate{From: from, To: to, Kind: base.MoveKind(m.Kind)}, nil
}

func DocFromCandidate(mv base.MoveCandidate) MoveDoc {
	return MoveDoc{From: mv.From.ServerIndex(), To: mv.To.ServerIndex(), Kind: int(mv.Kind)}
}

// BoardState converts the document into a fresh, validated BoardState.
func (d *PositionDoc) BoardState() (*base.BoardState, error) {
	active, phase := base.PhaseFromState(d.State)
	b := &base.BoardState{
		ActiveSide: active,
		Halfmoves:  d.HalfmoveCount,
		Fullmoves:  d.FullmoveCount,
		Phase:      phase,
	}
	b.Scores[base.White], b.Scores[base.Black] = d.WhiteScore, d.BlackScore
	b.Advantages[base.White], b.Advantages[base.Black] = d.WhiteAdvantage, d.BlackAdvantage

	for side, docs := range map[base.Side][]PieceDoc{base.White: d.Whites, base.Black: d.Blacks} {
		pieces, err := makePieces(docs, side)
		if err != nil {
			return nil, err
		}
		b.Pieces[side] = pieces
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if len(d.Occupancy) > 0 {
		if err := checkOccupancy(b, d.Occupancy); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func makePieces(docs []PieceDoc, side base.Side) ([]*base.Piece, error) {
	pieces := make([]*base.Piece, 0, len(docs))
	for _, info := range docs {
		pos, err := base.SquareFromServerIndex(info.Pos)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
		role, err := base.ParseRole(info.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
		p := &base.Piece{Position: pos, Side: side, Role: role}
		for _, a := range info.Attacks {
			// older engines omit "from"; the piece square is authoritative
			if a.From == 0 && info.Pos != 0 {
				a.From = info.Pos
			}
			if a.From != info.Pos {
				return nil, fmt.Errorf("%w: move from %d listed under piece %d", ErrBadDocument, a.From, info.Pos)
			}
			mv, err := a.Candidate()
			if err != nil {
				return nil, err
			}
			p.LegalMoves = append(p.LegalMoves, mv)
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}

func checkOccupancy(b *base.BoardState, rows []int) error {
	if len(rows) != 8 {
		return fmt.Errorf("%w: %d occupancy rows", ErrBadDocument, len(rows))
	}
	var bits [8]uint8
	for i, r := range rows {
		if r < 0 || r > 0xff {
			return fmt.Errorf("%w: occupancy row %d = %d", ErrBadDocument, i, r)
		}
		bits[i] = uint8(r)
	}
	occupied := base.DecodeBitboardRows(bits)
	if len(occupied) != len(b.Pieces[base.White])+len(b.Pieces[base.Black]) {
		return fmt.Errorf("%w: occupancy does not match piece list", ErrBadDocument)
	}
	for _, sq := range occupied {
		if b.PieceAt(sq) == nil {
			return fmt.Errorf("%w: occupancy marks empty square %v", ErrBadDocument, sq)
		}
	}
	return nil
}
