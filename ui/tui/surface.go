package tui

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"chessview/src/base"
	"chessview/src/render"
)

// Surface maps render primitives onto terminal cells. One unit is one cell.
type Surface struct {
	screen tcell.Screen
	pal    render.Palette
}

func NewSurface(screen tcell.Screen, pal render.Palette) *Surface {
	return &Surface{screen: screen, pal: pal}
}

// tcellColor drops alpha: cells cannot blend, so overlays show their hue.
func tcellColor(c color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	st := tcell.StyleDefault.Background(tcellColor(c))
	for cy := int(y); cy < int(y+h); cy++ {
		for cx := int(x); cx < int(x+w); cx++ {
			s.screen.SetContent(cx, cy, ' ', nil, st)
		}
	}
}

// overlay writes r in colour c keeping the cell's background.
func (s *Surface) overlay(x, y int, r rune, c color.Color) {
	_, _, st, _ := s.screen.GetContent(x, y)
	_, bg, _ := st.Decompose()
	s.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Background(bg).Foreground(tcellColor(c)))
}

// mark draws r unless the cell already holds a piece glyph.
func (s *Surface) mark(x, y int, r rune, c color.Color) {
	if cur, _, _, _ := s.screen.GetContent(x, y); cur != ' ' && cur != 0 && cur != '·' && cur != '●' {
		return
	}
	s.overlay(x, y, r, c)
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	s.mark(int(cx), int(cy), '●', c)
}

// StrokeLine marks the cells along the segment; cells holding a piece keep
// their glyph.
func (s *Surface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	steps := int(math.Max(math.Abs(x2-x1), math.Abs(y2-y1)))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(x1 + (x2-x1)*t)
		y := int(y1 + (y2-y1)*t)
		s.mark(x, y, '·', c)
	}
}

func (s *Surface) DrawPiece(side base.Side, role base.Role, x, y, w, h float64) {
	c := s.pal.WhitePiece
	if side == base.Black {
		c = s.pal.BlackPiece
	}
	s.overlay(int(x+w/2), int(y+h/2), []rune(pieceRunes[side][role])[0], c)
}

var pieceRunes = [2][6]string{
	base.White: {"♙", "♘", "♗", "♖", "♕", "♔"},
	base.Black: {"♟", "♞", "♝", "♜", "♛", "♚"},
}

func (s *Surface) Text(x, y int, str string, c color.Color) {
	st := tcell.StyleDefault.Foreground(tcellColor(c)).Background(tcellColor(s.pal.Bg))
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

var _ render.Surface = (*Surface)(nil)
