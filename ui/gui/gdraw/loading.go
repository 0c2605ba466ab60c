package gdraw

import (
	"strings"

	"chessview/ui/gui/gctx"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
)

// GUILoadingDrawer waits for the sprite prefetch before the board is shown.
type GUILoadingDrawer struct {
	ticks int
}

func NewGUILoadingDrawer(ctx *gctx.GUIGameContext) *GUILoadingDrawer {
	return &GUILoadingDrawer{}
}

func (ld *GUILoadingDrawer) Update(ctx *gctx.GUIGameContext) (SceneType, error) {
	ld.ticks++
	if !ctx.Sprites.Ready() {
		return SceneNotChanged, nil
	}
	if err := ctx.Sprites.Err(); err != nil {
		ctx.Logx.Warnf("some sprites failed, glyphs will be used: %v", err)
	}
	return ScenePlay, nil
}

func (ld *GUILoadingDrawer) Draw(ctx *gctx.GUIGameContext, screen *ebiten.Image) {
	screen.Fill(ctx.Theme.Bg)
	msg := "Loading pieces" + strings.Repeat(".", ld.ticks/20%4)
	b := text.BoundString(ctx.Fonts.Bold, msg)
	text.Draw(screen, msg, ctx.Fonts.Bold, (ctx.Config.WindowW-b.Dx())/2, ctx.Config.WindowH/2, ctx.Theme.Text)
}
