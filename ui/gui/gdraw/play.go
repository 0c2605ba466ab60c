package gdraw

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"chessview/src/base"
	"chessview/src/render"
	"chessview/src/session"
	"chessview/ui/gui/gctx"
	"chessview/ui/gui/ghelper"
	"chessview/ui/gui/ghelper/gclipboard"
	"chessview/ui/gui/ghelper/gdialog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const toastSeconds = 3

// GUIPlayDrawer shows the session's board and forwards clicks to it.
type GUIPlayDrawer struct {
	// layout
	boardX, boardY int // top-left pixel
	boardSize      int // pixel size (square*8)
	sqSize         int // pixel size per square
	flipped        bool

	pieces ghelper.PieceImages

	// buttons
	buttons  []*ghelper.Button
	idxNew   int
	idxFlip  int
	idxHint  int
	idxSave  int
	idxCopy  int
	btnColor struct{ fill, stroke, text, accent color.RGBA }

	msg   *ghelper.MessageBox
	toast ghelper.Toast

	// result of a save dialog running off the loop
	saved chan string

	prevMouseDown bool
	lastTick      time.Time
}

func NewGUIPlayDrawer(ctx *gctx.GUIGameContext) *GUIPlayDrawer {
	pd := &GUIPlayDrawer{
		pieces:   ghelper.NewPieceImages(ctx.Sprites),
		msg:      &ghelper.MessageBox{},
		saved:    make(chan string, 1),
		lastTick: time.Now(),
	}
	pd.btnColor.fill = ctx.Theme.LightSquare
	pd.btnColor.stroke = ctx.Theme.DarkSquare
	pd.btnColor.text = ctx.Theme.Text
	pd.btnColor.accent = ctx.Theme.Selected
	pd.recalcLayout(ctx)
	pd.makeLayoutButtons(ctx)
	return pd
}

// board gets min(width-400, height-120), never below 320
func (pd *GUIPlayDrawer) recalcLayout(ctx *gctx.GUIGameContext) {
	ww := ctx.Config.WindowW
	wh := ctx.Config.WindowH

	maxSize := min(ww-400, wh-120)
	if maxSize < 320 {
		maxSize = 320
	}
	pd.sqSize = maxSize / 8
	pd.boardSize = pd.sqSize * 8
	pd.boardX = (ww - pd.boardSize) / 2
	pd.boardY = (wh-pd.boardSize)/2 - 20
}

func (pd *GUIPlayDrawer) layout() base.Layout {
	l := base.SquareLayout(float64(pd.boardX), float64(pd.boardY), float64(pd.sqSize))
	l.Flipped = pd.flipped
	return l
}

func (pd *GUIPlayDrawer) makeLayoutButtons(ctx *gctx.GUIGameContext) {
	pd.buttons = []*ghelper.Button{}

	addBtn := func(label string, x, y, w, h int) int {
		idx := len(pd.buttons)
		pd.buttons = append(pd.buttons, ghelper.NewButton(label, x, y, w, h, pd.btnColor.fill, pd.btnColor.stroke))
		return idx
	}

	x := max(pd.boardX-200, 20)
	y := pd.boardY + 40
	w, h := 160, 48
	pd.idxNew = addBtn("New game", x, y, w, h)
	y += h + 14
	pd.idxFlip = addBtn("Flip board", x, y, w, h)
	y += h + 14
	pd.idxHint = addBtn("Hints", x, y, w, h)
	pd.buttons[pd.idxHint].Toggled = ctx.Session.Suggestions()
	y += h + 14
	pd.idxSave = addBtn("Save PNG", x, y, w, h)
	y += h + 14
	pd.idxCopy = addBtn("Copy status", x, y, w, h)
}

func (pd *GUIPlayDrawer) Update(ctx *gctx.GUIGameContext) (SceneType, error) {
	ctx.Session.Pump()

	now := time.Now()
	dt := now.Sub(pd.lastTick).Seconds()
	pd.lastTick = now
	pd.toast.Tick(dt)

	select {
	case m := <-pd.saved:
		pd.toast.Show(m, toastSeconds)
	default:
	}

	for _, n := range ctx.Session.TakeNotices() {
		if n.Modal() {
			pd.msg.ShowMessage(n.Text, nil)
		} else {
			pd.toast.Show(n.Text, toastSeconds)
		}
	}

	mx, my := ebiten.CursorPosition()
	mouseDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	justPressed := mouseDown && !pd.prevMouseDown
	justReleased := !mouseDown && pd.prevMouseDown
	pd.prevMouseDown = mouseDown

	// the modal swallows all input until it is closed
	if pd.msg.Open {
		if justPressed {
			pd.msg.CollapseOnOK(ctx.Fonts.Normal, ctx.Config.WindowW, ctx.Config.WindowH, mx, my)
		}
		pd.msg.AnimateMessage()
		return SceneNotChanged, nil
	}

	for i, b := range pd.buttons {
		clicked := b.HandleInput(mx, my, justPressed, justReleased)
		b.UpdateAnim(dt)
		if !clicked {
			continue
		}
		switch i {
		case pd.idxNew:
			ctx.Session.NewGame()
		case pd.idxFlip:
			pd.flipped = !pd.flipped
		case pd.idxHint:
			on := !ctx.Session.Suggestions()
			ctx.Session.SetSuggestions(on)
			b.Toggled = on
			ctx.Config.Suggestions = on
			if err := ctx.Config.Save(); err != nil {
				ctx.Logx.Warnf("save config: %v", err)
			}
		case pd.idxSave:
			pd.savePNG(ctx)
		case pd.idxCopy:
			if err := gclipboard.CopyLines(ctx.Session.Status().Lines()); err != nil {
				ctx.Logx.Warnf("copy status: %v", err)
				pd.toast.Show("Clipboard unavailable", toastSeconds)
			} else {
				pd.toast.Show("Status copied", toastSeconds)
			}
		}
		return SceneNotChanged, nil
	}

	// board clicks act on release, like the buttons
	if justReleased {
		tr := ctx.Session.ClickPixel(float64(mx), float64(my), pd.layout())
		if tr.Outcome != session.Ignored {
			ctx.Logx.Debugf("click %d,%d: %v", mx, my, tr.Outcome)
		}
	}
	return SceneNotChanged, nil
}

func (pd *GUIPlayDrawer) frame(ctx *gctx.GUIGameContext) render.Frame {
	return render.Frame{
		Board:      ctx.Session.Board(),
		Generation: ctx.Session.Generation(),
		Selected:   ctx.Session.Selected(),
		Suggestion: ctx.Session.Suggestion(),
		Layout:     pd.layout(),
	}
}

// savePNG renders the frame now and leaves the dialog and the file write
// to a goroutine so the window keeps drawing.
func (pd *GUIPlayDrawer) savePNG(ctx *gctx.GUIGameContext) {
	if ctx.Session.Board() == nil {
		pd.toast.Show("Nothing to save yet", toastSeconds)
		return
	}
	snap := render.Snapshot(pd.frame(ctx), ctx.Session.Status().Lines(), ctx.Sprites, ctx.Theme)
	name := fmt.Sprintf("chessview-%d.png", ctx.Session.Generation())
	go func() {
		path, err := gdialog.SavePNG("Save board", name)
		if errors.Is(err, gdialog.ErrCancelled) {
			return
		}
		if err == nil {
			err = snap.SavePNG(path)
		}
		msg := "Saved " + path
		if err != nil {
			ctx.Logx.Errorf("save png: %v", err)
			msg = "Save failed"
		}
		select {
		case pd.saved <- msg:
		default:
		}
	}()
}

func (pd *GUIPlayDrawer) Draw(ctx *gctx.GUIGameContext, screen *ebiten.Image) {
	screen.Fill(ctx.Theme.Bg)

	border := ghelper.RenderRoundedRect(pd.boardSize+8, pd.boardSize+8, 6, pd.btnColor.fill, pd.btnColor.stroke, 2)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(pd.boardX-4), float64(pd.boardY-4))
	screen.DrawImage(border, op)

	if ctx.Session.Board() != nil {
		surf := &ghelper.Surface{Screen: screen, Pieces: pd.pieces, Face: ctx.Fonts.Bold, Pal: ctx.Theme}
		render.Draw(surf, pd.frame(ctx), ctx.Theme)
	}

	// status panel right of the board
	st := ctx.Session.Status()
	px := pd.boardX + pd.boardSize + 24
	ghelper.TextBlock(screen, ctx.Fonts.Bold, []string{st.TurnText()}, px, pd.boardY+20, 24, ctx.Theme.Text)
	if lines := st.Lines(); len(lines) > 1 {
		ghelper.TextBlock(screen, ctx.Fonts.Small, lines[1:], px, pd.boardY+52, 20, ctx.Theme.Text)
	}
	if ctx.Session.SuggestionInFlight() {
		ghelper.TextBlock(screen, ctx.Fonts.Small, []string{"thinking..."}, px, pd.boardY+pd.boardSize, 20, ctx.Theme.Text)
	}

	for _, b := range pd.buttons {
		b.DrawAnimated(screen, ctx.Fonts.Normal, pd.btnColor.text, pd.btnColor.accent)
	}

	if pd.toast.Visible() {
		ghelper.TextBlock(screen, ctx.Fonts.Normal, []string{pd.toast.Text}, pd.boardX, pd.boardY+pd.boardSize+36, 20, ctx.Theme.Text)
	}

	if pd.msg.Open || pd.msg.Animating {
		DrawModal(ctx, pd.msg, screen)
	}

	if ctx.Config.Debug {
		ss := ctx.Session.SuggestStats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %0.2f  gen: %d  suggest: %+v", ebiten.ActualTPS(), ctx.Session.Generation(), ss))
	}
}
