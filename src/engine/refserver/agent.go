package refserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"

	"chessview/src/engine/uci"
)

var ErrNoMoves = errors.New("no legal moves")

// Agent picks a move for the side to move.
type Agent interface {
	Suggest(ctx context.Context, pos *chess.Position) (*chess.Move, error)
}

// Greedy plays mate in one when it can, otherwise the move that wins the
// most material. Ties keep move generation order.
type Greedy struct{}

func (Greedy) Suggest(ctx context.Context, pos *chess.Position) (*chess.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	var best *chess.Move
	bestScore := -1e9
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := pos.Update(m)
		if next.Status() == chess.Checkmate {
			return m, nil
		}
		score := gain(pos, m)
		if next.Status() == chess.Stalemate {
			score -= 100
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, nil
}

func gain(pos *chess.Position, m *chess.Move) float64 {
	var v float64
	if m.HasTag(chess.EnPassant) {
		v += pieceValue[chess.Pawn]
	} else if p := pos.Board().Piece(m.S2()); p != chess.NoPiece {
		v += pieceValue[p.Type()]
	}
	if m.Promo() != chess.NoPieceType {
		v += pieceValue[m.Promo()] - pieceValue[chess.Pawn]
	}
	// checks break ties
	if m.HasTag(chess.Check) {
		v += 0.1
	}
	return v
}

// UCIAgent asks an external engine.
type UCIAgent struct {
	Exec     *uci.Executor
	MoveTime time.Duration
}

func (a *UCIAgent) Suggest(ctx context.Context, pos *chess.Position) (*chess.Move, error) {
	res, err := a.Exec.Search(ctx, pos.String(), a.MoveTime)
	if err != nil {
		return nil, err
	}
	m, err := chess.UCINotation{}.Decode(pos, res.BestMove)
	if err != nil {
		return nil, fmt.Errorf("engine move %q: %w", res.BestMove, err)
	}
	return m, nil
}
