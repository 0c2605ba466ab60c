package refserver

import (
	"context"
	"net"
	"testing"
	"time"

	"chessview/src/base"
	"chessview/src/engine/httpengine"
	"chessview/src/logx"
	"chessview/src/session"
)

func listen(t *testing.T) (*Server, string) {
	t.Helper()
	s := newTestServer(t, "")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(func() { _ = s.Shutdown() })
	return s, "http://" + ln.Addr().String()
}

func TestSessionAgainstServer(t *testing.T) {
	_, url := listen(t)
	client, err := httpengine.New(url, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	opts := session.DefaultOptions()
	opts.Watch = false
	sess := session.New(client, opts, logx.Nop())
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.Start(ctx)
	if err := sess.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	if sess.Status().LegalMoves != 20 {
		t.Fatalf("status = %+v", sess.Status())
	}
	if sess.Suggestion() == nil {
		t.Error("no suggestion for the opening")
	}

	e2, _ := base.ParseAlgebraic("e2")
	e4, _ := base.ParseAlgebraic("e4")
	sess.Click(e2)
	if tr := sess.Click(e4); tr.Outcome != session.Submitted {
		t.Fatalf("click e4 = %v", tr.Outcome)
	}
	if err := sess.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	b := sess.Board()
	if b.ActiveSide != base.Black || b.PieceAt(e4) == nil {
		t.Errorf("after e2e4: active %v, e4 %+v", b.ActiveSide, b.PieceAt(e4))
	}
	if n := sess.TakeNotices(); len(n) != 0 {
		t.Errorf("notices = %+v", n)
	}
}

func TestSessionFollowsEvents(t *testing.T) {
	srv, url := listen(t)
	client, err := httpengine.New(url, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	opts := session.DefaultOptions()
	opts.Suggestions = false
	sess := session.New(client, opts, logx.Nop())
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.Start(ctx)
	if err := sess.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	for srv.hub.count() == 0 {
		if ctx.Err() != nil {
			t.Fatal("watcher never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// another player moves
	other, _ := httpengine.New(url, logx.Nop())
	if err := other.Move(ctx, "12.28.2"); err != nil {
		t.Fatal(err)
	}
	for sess.Board().ActiveSide != base.Black {
		if err := sess.Step(ctx); err != nil {
			t.Fatalf("waiting for the pushed position: %v", err)
		}
	}
}
