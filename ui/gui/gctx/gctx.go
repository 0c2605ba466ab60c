package gctx

import (
	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
	"chessview/ui/gconf"
	"chessview/ui/gui/ghelper/gfont"
)

// ---- GUI Context ----

type GUIGameContext struct {
	Session *session.Session
	Sprites *render.Sprites
	Config  *gconf.Config
	Theme   render.Palette
	Fonts   *gfont.Fonts
	Logx    logx.Logger
}

func NewGUIGameContext(s *session.Session, sp *render.Sprites, c *gconf.Config, f *gfont.Fonts, l logx.Logger) *GUIGameContext {
	return &GUIGameContext{
		Session: s,
		Sprites: sp,
		Config:  c,
		Theme:   render.PaletteFromString(c.Theme),
		Fonts:   f,
		Logx:    l,
	}
}
