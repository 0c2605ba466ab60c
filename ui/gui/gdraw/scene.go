package gdraw

import (
	"image/color"

	"chessview/ui/gui/gctx"
	"chessview/ui/gui/ghelper"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ---- Scene ----

type Scene interface {
	Update(ctx *gctx.GUIGameContext) (SceneType, error)
	Draw(ctx *gctx.GUIGameContext, screen *ebiten.Image)
}

type SceneType int

const (
	SceneLoading SceneType = iota
	ScenePlay
	SceneNotChanged
)

func (t SceneType) ToScene(s Scene, ctx *gctx.GUIGameContext) Scene {
	switch t {
	case SceneLoading:
		s = NewGUILoadingDrawer(ctx)
	case ScenePlay:
		s = NewGUIPlayDrawer(ctx)
	case SceneNotChanged:
	default:
	}
	return s
}

var modalDim = color.RGBA{0, 0, 0, 0x88}

// DrawModal dims the screen and draws mb at its current scale.
func DrawModal(ctx *gctx.GUIGameContext, mb *ghelper.MessageBox, screen *ebiten.Image) {
	w, h := ctx.Config.WindowW, ctx.Config.WindowH
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), modalDim, false)

	box, ok := mb.Geometry(ctx.Fonts.Normal, w, h)
	stroke := ctx.Theme.Text
	img := ghelper.RenderRoundedRect(box[2], box[3], 16, ctx.Theme.Bg, stroke, 3)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(box[0]), float64(box[1]))
	screen.DrawImage(img, op)

	// text and OK only once the box is almost open
	if mb.Scale <= 0.85 {
		return
	}
	text.Draw(screen, mb.Text, ctx.Fonts.Normal, box[0]+32, box[1]+60, ctx.Theme.Text)
	okImg := ghelper.RenderRoundedRect(ok[2], ok[3], 16, ctx.Theme.Selected, stroke, 3)
	op2 := &ebiten.DrawImageOptions{}
	op2.GeoM.Translate(float64(ok[0]), float64(ok[1]))
	screen.DrawImage(okImg, op2)
	b := text.BoundString(ctx.Fonts.Normal, "OK")
	text.Draw(screen, "OK", ctx.Fonts.Normal, ok[0]+(ok[2]-b.Dx())/2, ok[1]+(ok[3]+b.Dy())/2, ctx.Theme.Text)
}
