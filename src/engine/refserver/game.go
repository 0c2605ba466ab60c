package refserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"chessview/src/base"
	"chessview/src/engine"
)

var pieceValue = map[chess.PieceType]float64{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

var roleOf = map[chess.PieceType]base.Role{
	chess.Pawn:   base.Pawn,
	chess.Knight: base.Knight,
	chess.Bishop: base.Bishop,
	chess.Rook:   base.Rook,
	chess.Queen:  base.Queen,
	chess.King:   base.King,
}

// moveKind classifies a legal move the way the wire protocol numbers them.
// Promotion wins over capture.
func moveKind(pos *chess.Position, m *chess.Move) base.MoveKind {
	switch m.Promo() {
	case chess.Queen:
		return base.PromoteQueen
	case chess.Knight:
		return base.PromoteKnight
	case chess.Rook:
		return base.PromoteRook
	case chess.Bishop:
		return base.PromoteBishop
	}
	switch {
	case m.HasTag(chess.QueenSideCastle):
		return base.QueensideCastle
	case m.HasTag(chess.KingSideCastle):
		return base.KingsideCastle
	case m.HasTag(chess.EnPassant):
		return base.EnPassant
	case m.HasTag(chess.Capture):
		return base.Capture
	}
	if pos.Board().Piece(m.S1()).Type() == chess.Pawn {
		d := int(m.S2().Rank()) - int(m.S1().Rank())
		if d == 2 || d == -2 {
			return base.DoubleJump
		}
	}
	return base.Regular
}

func moveDoc(pos *chess.Position, m *chess.Move) engine.MoveDoc {
	return engine.MoveDoc{From: int(m.S1()), To: int(m.S2()), Kind: int(moveKind(pos, m))}
}

// findMove looks the payload up among the legal moves of the position.
func findMove(g *chess.Game, payload string) (*chess.Move, error) {
	want, err := engine.ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	pos := g.Position()
	for _, m := range g.ValidMoves() {
		if moveDoc(pos, m) == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrMoveRejected, payload)
}

// state encodes the side to move or the result: 0 white, 1 black, 2 white
// won, 3 black won, 4 drawn.
func state(g *chess.Game) int {
	switch g.Outcome() {
	case chess.WhiteWon:
		return 2
	case chess.BlackWon:
		return 3
	case chess.Draw:
		return 4
	}
	if g.Position().Turn() == chess.Black {
		return 1
	}
	return 0
}

// moveCounters reads the half/fullmove clocks from the FEN.
func moveCounters(pos *chess.Position) (half, full int) {
	f := strings.Fields(pos.String())
	if len(f) >= 6 {
		half, _ = strconv.Atoi(f[4])
		full, _ = strconv.Atoi(f[5])
	}
	return half, full
}

func material(board *chess.Board) (white, black float64) {
	for _, p := range board.SquareMap() {
		v := pieceValue[p.Type()]
		if p.Color() == chess.White {
			white += v
		} else {
			black += v
		}
	}
	return white, black
}

// positionDoc renders the game as the /game/info document. Only the side to
// move lists its legal moves.
func positionDoc(g *chess.Game) *engine.PositionDoc {
	pos := g.Position()
	board := pos.Board()
	doc := &engine.PositionDoc{
		State:  state(g),
		Whites: []engine.PieceDoc{},
		Blacks: []engine.PieceDoc{},
	}
	doc.HalfmoveCount, doc.FullmoveCount = moveCounters(pos)
	doc.WhiteScore, doc.BlackScore = material(board)
	doc.WhiteAdvantage = doc.WhiteScore - doc.BlackScore
	doc.BlackAdvantage = doc.BlackScore - doc.WhiteScore

	attacks := map[chess.Square][]engine.MoveDoc{}
	if g.Outcome() == chess.NoOutcome {
		for _, m := range g.ValidMoves() {
			attacks[m.S1()] = append(attacks[m.S1()], moveDoc(pos, m))
		}
	}

	var occupied []base.Square
	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		p := board.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		pd := engine.PieceDoc{Pos: i, Kind: roleOf[p.Type()].String(), Attacks: attacks[sq]}
		if pd.Attacks == nil {
			pd.Attacks = []engine.MoveDoc{}
		}
		if p.Color() == chess.White {
			doc.Whites = append(doc.Whites, pd)
		} else {
			doc.Blacks = append(doc.Blacks, pd)
		}
		if s, err := base.SquareFromServerIndex(i); err == nil {
			occupied = append(occupied, s)
		}
	}
	rows := base.EncodeBitboardRows(occupied)
	doc.Occupancy = make([]int, len(rows))
	for i, r := range rows {
		doc.Occupancy[i] = int(r)
	}
	return doc
}
