package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"chessview/src/base"
)

// GGSurface draws into an off-screen gg context, used for PNG snapshots.
type GGSurface struct {
	dc      *gg.Context
	sprites *Sprites
	pal     Palette
}

func NewGGSurface(w, h int, sprites *Sprites, pal Palette) *GGSurface {
	dc := gg.NewContext(w, h)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(pal.Bg)
	dc.Clear()
	return &GGSurface{dc: dc, sprites: sprites, pal: pal}
}

func (g *GGSurface) FillRect(x, y, w, h float64, c color.Color) {
	g.dc.SetColor(c)
	g.dc.DrawRectangle(x, y, w, h)
	g.dc.Fill()
}

func (g *GGSurface) FillCircle(cx, cy, r float64, c color.Color) {
	g.dc.SetColor(c)
	g.dc.DrawCircle(cx, cy, r)
	g.dc.Fill()
}

func (g *GGSurface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	g.dc.SetColor(c)
	g.dc.SetLineWidth(width)
	g.dc.SetLineCapRound()
	g.dc.DrawLine(x1, y1, x2, y2)
	g.dc.Stroke()
}

func (g *GGSurface) DrawPiece(side base.Side, role base.Role, x, y, w, h float64) {
	if g.sprites != nil {
		if img := g.sprites.Get(side, role); img != nil {
			b := img.Bounds()
			g.dc.Push()
			g.dc.Translate(x, y)
			g.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
			g.dc.DrawImage(img, 0, 0)
			g.dc.Pop()
			return
		}
	}
	fill, ink := g.pal.WhitePiece, g.pal.BlackPiece
	if side == base.Black {
		fill, ink = ink, fill
	}
	g.FillCircle(x+w/2, y+h/2, w*0.36, fill)
	g.dc.SetColor(ink)
	g.dc.DrawStringAnchored(Glyph(side, role), x+w/2, y+h/2, 0.5, 0.35)
}

// Text writes status lines starting at x, y.
func (g *GGSurface) Text(lines []string, x, y float64) {
	g.dc.SetColor(g.pal.Text)
	for i, line := range lines {
		g.dc.DrawString(line, x, y+float64(i)*16)
	}
}

func (g *GGSurface) Image() image.Image { return g.dc.Image() }

func (g *GGSurface) SavePNG(path string) error { return g.dc.SavePNG(path) }

// Snapshot renders the frame with the status lines below the board.
func Snapshot(f Frame, lines []string, sprites *Sprites, pal Palette) *GGSurface {
	const margin = 16
	f.Layout.X, f.Layout.Y = margin, margin
	w := int(f.Layout.Width()) + 2*margin
	h := int(f.Layout.Height()) + 2*margin + 16*len(lines)
	s := NewGGSurface(w, h, sprites, pal)
	Draw(s, f, pal)
	s.Text(lines, margin, f.Layout.Y+f.Layout.Height()+margin)
	return s
}
