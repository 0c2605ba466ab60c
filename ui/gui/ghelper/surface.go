package ghelper

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"chessview/src/base"
	"chessview/src/render"
)

// PieceImages converts prefetched sprites to GPU images once.
type PieceImages map[[2]int]*ebiten.Image

func NewPieceImages(sp *render.Sprites) PieceImages {
	imgs := PieceImages{}
	for _, side := range []base.Side{base.White, base.Black} {
		for _, role := range base.Roles() {
			if img := sp.Get(side, role); img != nil {
				imgs[[2]int{int(side), int(role)}] = ebiten.NewImageFromImage(img)
			}
		}
	}
	return imgs
}

// Surface adapts an ebiten screen to render.Surface.
type Surface struct {
	Screen *ebiten.Image
	Pieces PieceImages
	Face   font.Face
	Pal    render.Palette
}

func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(s.Screen, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	vector.DrawFilledCircle(s.Screen, float32(cx), float32(cy), float32(r), c, true)
}

func (s *Surface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	vector.StrokeLine(s.Screen, float32(x1), float32(y1), float32(x2), float32(y2), float32(width), c, true)
}

func (s *Surface) DrawPiece(side base.Side, role base.Role, x, y, w, h float64) {
	if img := s.Pieces[[2]int{int(side), int(role)}]; img != nil {
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
		op.GeoM.Translate(x, y)
		op.Filter = ebiten.FilterLinear
		s.Screen.DrawImage(img, op)
		return
	}
	fill, ink := s.Pal.WhitePiece, s.Pal.BlackPiece
	if side == base.Black {
		fill, ink = ink, fill
	}
	s.FillCircle(x+w/2, y+h/2, w*0.36, fill)
	g := render.Glyph(side, role)
	bounds := text.BoundString(s.Face, g)
	text.Draw(s.Screen, g, s.Face, int(x+w/2)-bounds.Dx()/2, int(y+h/2)+bounds.Dy()/2, ink)
}

var _ render.Surface = (*Surface)(nil)

// TextBlock draws lines top-down starting at the baseline (x, y).
func TextBlock(screen *ebiten.Image, face font.Face, lines []string, x, y, lineH int, c color.Color) image.Point {
	for i, l := range lines {
		text.Draw(screen, l, face, x, y+i*lineH, c)
	}
	return image.Pt(x, y+len(lines)*lineH)
}
