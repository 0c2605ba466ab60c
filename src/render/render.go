// Package render projects a board position onto an abstract drawing surface.
package render

import (
	"image/color"
	"math"

	"chessview/src/base"
)

// Surface is the minimal set of primitives a front-end has to provide.
type Surface interface {
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeLine(x1, y1, x2, y2, width float64, c color.Color)
	DrawPiece(side base.Side, role base.Role, x, y, w, h float64)
}

// Frame is everything one picture depends on.
type Frame struct {
	Board      *base.BoardState
	Generation uint64
	Selected   *base.Piece
	Suggestion *base.Suggestion
	Layout     base.Layout
}

const arrowHeadAngle = math.Pi / 6

// Draw paints f onto s. It only reads its inputs, so the same frame always
// produces the same sequence of calls.
func Draw(s Surface, f Frame, pal Palette) {
	l := f.Layout
	for _, sq := range base.AllSquares() {
		x, y := l.SquareOrigin(sq)
		s.FillRect(x, y, l.SquareW, l.SquareH, squareColor(sq, pal))
	}

	if p := f.Selected; p != nil {
		x, y := l.SquareOrigin(p.Position)
		s.FillRect(x, y, l.SquareW, l.SquareH, pal.Selected)
		for _, mv := range p.LegalMoves {
			x, y := l.SquareOrigin(mv.To)
			c := pal.Destination
			if IsCapture(f.Board, p, mv) {
				c = pal.Capture
			}
			s.FillRect(x, y, l.SquareW, l.SquareH, c)
		}
	}

	if f.Board != nil {
		for _, side := range []base.Side{base.White, base.Black} {
			for _, p := range f.Board.Pieces[side] {
				x, y := l.SquareOrigin(p.Position)
				s.DrawPiece(p.Side, p.Role, x, y, l.SquareW, l.SquareH)
			}
		}
	}

	if sg := f.Suggestion; sg != nil && sg.Generation == f.Generation {
		drawArrow(s, l, sg.Move, pal.Arrow)
	}
}

func squareColor(sq base.Square, pal Palette) color.RGBA {
	if (sq.File+sq.Rank)%2 == 0 {
		return pal.LightSquare
	}
	return pal.DarkSquare
}

// IsCapture reports whether mv lands on an opposing piece or is tagged as a
// capture by the engine.
func IsCapture(b *base.BoardState, p *base.Piece, mv base.MoveCandidate) bool {
	if mv.Kind == base.Capture || mv.Kind == base.EnPassant {
		return true
	}
	t := b.PieceAt(mv.To)
	return t != nil && t.Side != p.Side
}

func drawArrow(s Surface, l base.Layout, mv base.MoveCandidate, c color.Color) {
	x1, y1 := l.SquareCenter(mv.From)
	x2, y2 := l.SquareCenter(mv.To)
	width := l.SquareW / 10
	head := l.SquareW * 0.35

	s.StrokeLine(x1, y1, x2, y2, width, c)
	angle := math.Atan2(y2-y1, x2-x1)
	for _, a := range []float64{angle + math.Pi - arrowHeadAngle, angle + math.Pi + arrowHeadAngle} {
		s.StrokeLine(x2, y2, x2+head*math.Cos(a), y2+head*math.Sin(a), width, c)
	}
	s.FillCircle(x1, y1, width, c)
}

// Glyph is the single-letter fallback for a missing sprite: upper case for
// white, lower case for black.
func Glyph(side base.Side, role base.Role) string {
	g := [...]string{"p", "n", "b", "r", "q", "k"}[role]
	if side == base.White {
		return string(g[0] - 'a' + 'A')
	}
	return g
}
