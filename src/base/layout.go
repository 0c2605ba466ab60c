package base

// Layout places the board on a drawing surface. X/Y is the top-left pixel,
// SquareW/SquareH the size of one cell. Flipped mirrors both axes.
type Layout struct {
	X, Y             float64
	SquareW, SquareH float64
	Flipped          bool
}

func SquareLayout(x, y, size float64) Layout {
	return Layout{X: x, Y: y, SquareW: size, SquareH: size}
}

func (l Layout) Width() float64  { return l.SquareW * 8 }
func (l Layout) Height() float64 { return l.SquareH * 8 }

func (l Layout) Contains(px, py float64) bool {
	return px >= l.X && py >= l.Y && px < l.X+l.Width() && py < l.Y+l.Height()
}

// PixelToSquare returns false for points outside the board.
func (l Layout) PixelToSquare(px, py float64) (Square, bool) {
	if l.SquareW <= 0 || l.SquareH <= 0 || !l.Contains(px, py) {
		return Square{}, false
	}
	col := int((px - l.X) / l.SquareW)
	row := int((py - l.Y) / l.SquareH)
	// float rounding on the far edge
	if col > 7 {
		col = 7
	}
	if row > 7 {
		row = 7
	}
	if l.Flipped {
		return Square{File: 7 - col, Rank: 7 - row}, true
	}
	return Square{File: col, Rank: row}, true
}

// SquareOrigin is the top-left pixel of the square.
func (l Layout) SquareOrigin(s Square) (float64, float64) {
	col, row := s.File, s.Rank
	if l.Flipped {
		col, row = 7-col, 7-row
	}
	return l.X + float64(col)*l.SquareW, l.Y + float64(row)*l.SquareH
}

func (l Layout) SquareCenter(s Square) (float64, float64) {
	x, y := l.SquareOrigin(s)
	return x + l.SquareW/2, y + l.SquareH/2
}
