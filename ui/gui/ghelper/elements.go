package ghelper

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// ---- UI ELEMENTS ----

// ---- Button ----

type Button struct {
	Label      string
	X, Y, W, H int
	Image      *ebiten.Image // pre-rendered rounded rect with stroke
	Toggled    bool          // for on/off buttons

	Hover   bool
	Pressed bool

	Scale       float64
	TargetScale float64
	AnimSpeed   float64 // per second
}

func NewButton(label string, x, y, w, h int, fill, stroke color.RGBA) *Button {
	return &Button{
		Label: label, X: x, Y: y, W: w, H: h,
		Image: RenderRoundedRect(w, h, 12, fill, stroke, 3),
		Scale: 1, TargetScale: 1, AnimSpeed: 10,
	}
}

func (b *Button) Contains(px, py int) bool {
	return PointInRect(px, py, b.X, b.Y, b.W, b.H)
}

// HandleInput returns true when a press that started on the button is
// released over it.
func (b *Button) HandleInput(px, py int, justPressed, justReleased bool) bool {
	inside := b.Contains(px, py)
	b.Hover = inside

	if justPressed && inside {
		b.Pressed = true
	}
	clicked := false
	if justReleased {
		clicked = b.Pressed && inside
		b.Pressed = false
	}
	switch {
	case b.Pressed:
		b.TargetScale = 0.96
	case inside:
		b.TargetScale = 1.02
	default:
		b.TargetScale = 1
	}
	return clicked
}

func (b *Button) UpdateAnim(dt float64) {
	t := 1.0 - math.Exp(-b.AnimSpeed*dt)
	b.Scale = b.Scale*(1.0-t) + b.TargetScale*t
}

func (b *Button) DrawAnimated(screen *ebiten.Image, face font.Face, textColor, accent color.RGBA) {
	if b.Image == nil {
		return
	}
	cx := float64(b.X + b.W/2)
	cy := float64(b.Y + b.H/2)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.W)/2, -float64(b.H)/2)
	op.GeoM.Scale(b.Scale, b.Scale)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	if b.Toggled {
		op.ColorScale.ScaleWithColor(Blend(color.RGBA{0xff, 0xff, 0xff, 0xff}, accent, 0.35))
	}
	screen.DrawImage(b.Image, op)

	bounds := text.BoundString(face, b.Label)
	text.Draw(screen, b.Label, face, int(cx)-bounds.Dx()/2, int(cy)+bounds.Dy()/2, textColor)
}

// ---- MessageBox ----

// MessageBox is a modal with a single OK button that scales in and out.
type MessageBox struct {
	Open      bool
	Animating bool
	Opening   bool
	Scale     float64 // 0..1
	Text      string
	OnClose   func()
}

const (
	msgPadX = 64
	msgPadY = 120
	okW     = 120
	okH     = 44
)

func (mb *MessageBox) ShowMessage(msg string, onClose func()) {
	mb.Text = msg
	mb.Open = true
	mb.Opening = true
	mb.Animating = true
	mb.Scale = 0
	mb.OnClose = onClose
}

// AnimateMessage advances the open/close tween by one tick.
func (mb *MessageBox) AnimateMessage() {
	const step = 6.0 / 60.0
	if !mb.Animating {
		return
	}
	if mb.Opening {
		mb.Scale = math.Min(1, mb.Scale+step)
		if mb.Scale == 1 {
			mb.Animating = false
		}
		return
	}
	mb.Scale = math.Max(0, mb.Scale-step)
	if mb.Scale == 0 {
		mb.Animating = false
		mb.Open = false
		if mb.OnClose != nil {
			mb.OnClose()
		}
	}
}

// Geometry returns the box and OK button rectangles, centred in the window.
func (mb *MessageBox) Geometry(face font.Face, winW, winH int) (box, ok [4]int) {
	bounds := text.BoundString(face, mb.Text)
	w := int(float64(bounds.Dx()+msgPadX) * mb.Scale)
	h := int(float64(bounds.Dy()+msgPadY) * mb.Scale)
	w, h = max(w, 6), max(h, 6)
	x, y := (winW-w)/2, (winH-h)/2
	box = [4]int{x, y, w, h}
	ok = [4]int{x + (w-okW)/2, y + h - 56, okW, okH}
	return box, ok
}

// CollapseOnOK starts closing when (mx, my) is on the OK button.
func (mb *MessageBox) CollapseOnOK(face font.Face, winW, winH, mx, my int) bool {
	_, ok := mb.Geometry(face, winW, winH)
	if !PointInRect(mx, my, ok[0], ok[1], ok[2], ok[3]) {
		return false
	}
	mb.Opening = false
	mb.Animating = true
	return true
}

// Toast is a transient, non-modal notice.
type Toast struct {
	Text string
	Left float64 // seconds
}

func (t *Toast) Show(msg string, seconds float64) { t.Text, t.Left = msg, seconds }

func (t *Toast) Tick(dt float64) {
	if t.Left > 0 {
		t.Left -= dt
	}
}

func (t *Toast) Visible() bool { return t.Left > 0 && t.Text != "" }
