package tui

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"chessview/src/base"
	"chessview/src/engine/httpengine"
	"chessview/src/engine/refserver"
	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
)

func simScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func TestSurfaceDrawsBoard(t *testing.T) {
	screen := simScreen(t)
	e2, _ := base.ParseAlgebraic("e2")
	e4, _ := base.ParseAlgebraic("e4")
	pawn := &base.Piece{Position: e2, Side: base.White, Role: base.Pawn,
		LegalMoves: []base.MoveCandidate{{From: e2, To: e4, Kind: base.DoubleJump}}}
	board := &base.BoardState{Pieces: [2][]*base.Piece{{pawn}, nil}}
	l := base.Layout{X: boardX, Y: boardY, SquareW: squareW, SquareH: squareH}

	render.Draw(NewSurface(screen, render.LightPalette), render.Frame{Board: board, Selected: pawn, Layout: l}, render.LightPalette)

	x, y := l.SquareCenter(e2)
	if r, _, _, _ := screen.GetContent(int(x), int(y)); r != '♙' {
		t.Errorf("e2 holds %q", r)
	}
	x, y = l.SquareOrigin(e4)
	_, _, st, _ := screen.GetContent(int(x), int(y))
	if _, bg, _ := st.Decompose(); bg != tcellColor(render.LightPalette.Destination) {
		t.Errorf("e4 background = %v", bg)
	}
}

func TestMouseMovesPiece(t *testing.T) {
	srv, err := refserver.New(refserver.Config{}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	client, err := httpengine.New("http://"+ln.Addr().String(), logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	opts := session.DefaultOptions()
	opts.Suggestions = false
	opts.Watch = false
	sess := session.New(client, opts, logx.Nop())
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.Start(ctx)
	if err := sess.Settle(ctx); err != nil {
		t.Fatal(err)
	}

	tu := NewTUI(sess, simScreen(t), render.DarkPalette, logx.Nop())
	click := func(name string) {
		sq, _ := base.ParseAlgebraic(name)
		x, y := tu.layout().SquareOrigin(sq)
		tu.handleEvent(tcell.NewEventMouse(int(x)+1, int(y), tcell.Button1, 0))
		tu.handleEvent(tcell.NewEventMouse(int(x)+1, int(y), tcell.ButtonNone, 0))
	}
	click("e2")
	if sess.Selected() == nil {
		t.Fatal("e2 not selected")
	}
	click("e4")
	if err := sess.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	if sess.Board().ActiveSide != base.Black {
		t.Error("move not applied")
	}

	tu.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'f', 0))
	if !tu.flipped {
		t.Error("f did not flip")
	}
	tu.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if !tu.quit {
		t.Error("q did not quit")
	}
}
