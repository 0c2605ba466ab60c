package gui

import (
	"context"

	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
	"chessview/ui/gconf"
	"chessview/ui/gui/gctx"
	"chessview/ui/gui/gdraw"
	"chessview/ui/gui/ghelper/gfont"

	"github.com/hajimehoshi/ebiten/v2"
)

type GUIProcessing struct {
	current gdraw.Scene
	ctx     *gctx.GUIGameContext
}

// NewGUI starts the sprite prefetch; the board is shown once it completes.
func NewGUI(ctx context.Context, s *session.Session, cfg *gconf.Config, log logx.Logger) *GUIProcessing {
	fonts, err := gfont.LoadFonts()
	if err != nil {
		log.Warnf("load fonts, using basicfont: %v", err)
	}
	sprites := render.LoadSprites(ctx, cfg.SpritesDir, log.Named("sprites"))
	gc := gctx.NewGUIGameContext(s, sprites, cfg, fonts, log)
	return &GUIProcessing{
		current: gdraw.SceneLoading.ToScene(nil, gc),
		ctx:     gc,
	}
}

func (gp *GUIProcessing) Run() error {
	ebiten.SetWindowSize(gp.ctx.Config.WindowW, gp.ctx.Config.WindowH)
	ebiten.SetWindowTitle("ChessView")
	return ebiten.RunGame(gp)
}

func (gp *GUIProcessing) Update() error {
	next, err := gp.current.Update(gp.ctx)
	if err != nil {
		return err
	}
	gp.current = next.ToScene(gp.current, gp.ctx)
	return nil
}

func (gp *GUIProcessing) Draw(screen *ebiten.Image) {
	gp.current.Draw(gp.ctx, screen)
}

func (gp *GUIProcessing) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return gp.ctx.Config.WindowW, gp.ctx.Config.WindowH
}
