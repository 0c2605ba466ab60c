// Package tui is the terminal front-end: the board is drawn with cells and
// clicked with the mouse.
package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"chessview/src/base"
	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
)

// one square is four cells wide and two tall, which looks square in most
// terminal fonts
const (
	boardX  = 3
	boardY  = 1
	squareW = 4
	squareH = 2
)

const keysHelp = "click: select/move  n: new  h: hints  f: flip  r: refresh  q: quit"

type TUIProcessing struct {
	sess   *session.Session
	screen tcell.Screen
	pal    render.Palette
	log    logx.Logger

	flipped     bool
	quit        bool
	prevButtons tcell.ButtonMask
	notice      string
}

func NewTUI(s *session.Session, screen tcell.Screen, pal render.Palette, log logx.Logger) *TUIProcessing {
	return &TUIProcessing{sess: s, screen: screen, pal: pal, log: log}
}

func (t *TUIProcessing) layout() base.Layout {
	return base.Layout{X: boardX, Y: boardY, SquareW: squareW, SquareH: squareH, Flipped: t.flipped}
}

// Run owns the screen until the user quits. Terminal events are posted into
// the session loop together with network completions.
func (t *TUIProcessing) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	defer t.screen.Fini()
	t.screen.EnableMouse()

	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			t.sess.Post(func() { t.handleEvent(ev) })
		}
	}()

	t.sess.Start(ctx)
	t.draw()
	for !t.quit {
		if err := t.sess.Step(ctx); err != nil {
			return err
		}
		t.draw()
	}
	return nil
}

func (t *TUIProcessing) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		t.notice = ""
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			t.quit = true
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			t.quit = true
		case ev.Rune() == 'n':
			t.sess.NewGame()
		case ev.Rune() == 'h':
			t.sess.SetSuggestions(!t.sess.Suggestions())
		case ev.Rune() == 'f':
			t.flipped = !t.flipped
		case ev.Rune() == 'r':
			t.sess.Refresh()
		}
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && t.prevButtons&tcell.Button1 == 0
		t.prevButtons = buttons
		if !pressed {
			return
		}
		x, y := ev.Position()
		// aim at the cell centre
		tr := t.sess.ClickPixel(float64(x)+0.5, float64(y)+0.5, t.layout())
		t.log.Debugf("click %d,%d: %v", x, y, tr.Outcome)
	}
}

func (t *TUIProcessing) draw() {
	for _, n := range t.sess.TakeNotices() {
		t.notice = n.Text
	}

	bg := tcell.StyleDefault.Background(tcellColor(t.pal.Bg))
	t.screen.Fill(' ', bg)
	surf := NewSurface(t.screen, t.pal)

	l := t.layout()
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if t.flipped {
			file, rank = 7-i, 7-i
		}
		surf.Text(boardX+i*squareW+squareW/2, boardY+8*squareH, string(rune('a'+file)), t.pal.Text)
		surf.Text(1, boardY+i*squareH+squareH/2, string(rune('8'-rank)), t.pal.Text)
	}

	if b := t.sess.Board(); b != nil {
		render.Draw(surf, render.Frame{
			Board:      b,
			Generation: t.sess.Generation(),
			Selected:   t.sess.Selected(),
			Suggestion: t.sess.Suggestion(),
			Layout:     l,
		}, t.pal)
	}

	px := boardX + 8*squareW + 3
	for i, line := range t.sess.Status().Lines() {
		surf.Text(px, boardY+i, line, t.pal.Text)
	}
	if t.notice != "" {
		surf.Text(px, boardY+10, t.notice, t.pal.Capture)
	}
	surf.Text(boardX, boardY+8*squareH+2, keysHelp, t.pal.Text)
	t.screen.Show()
}
