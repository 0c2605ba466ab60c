package cli

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"chessview/src/base"
	"chessview/src/engine/httpengine"
	"chessview/src/engine/refserver"
	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
)

func sq(t *testing.T, name string) base.Square {
	t.Helper()
	s, err := base.ParseAlgebraic(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPrintBoardPlain(t *testing.T) {
	pawn := &base.Piece{Position: sq(t, "e2"), Side: base.White, Role: base.Pawn}
	pawn.LegalMoves = []base.MoveCandidate{
		{From: pawn.Position, To: sq(t, "e3"), Kind: base.Regular},
		{From: pawn.Position, To: sq(t, "e4"), Kind: base.DoubleJump},
	}
	king := &base.Piece{Position: sq(t, "e8"), Side: base.Black, Role: base.King}
	board := &base.BoardState{Pieces: [2][]*base.Piece{{pawn}, {king}}}

	var buf bytes.Buffer
	PrintBoard(&buf, render.Frame{Board: board, Selected: pawn}, false)
	out := buf.String()

	if !strings.Contains(out, "[♙]") {
		t.Errorf("selected pawn not bracketed:\n%s", out)
	}
	if n := strings.Count(out, "<.>"); n != 2 {
		t.Errorf("%d destinations marked, want 2:\n%s", n, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[1], "8 ") || !strings.Contains(lines[1], "♚") {
		t.Errorf("top row = %q", lines[1])
	}

	buf.Reset()
	PrintBoard(&buf, render.Frame{Board: board, Layout: base.Layout{Flipped: true}}, false)
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "   h") || !strings.HasPrefix(lines[1], "1 ") {
		t.Errorf("flipped header %q, first row %q", lines[0], lines[1])
	}
}

func TestPrintBoardColor(t *testing.T) {
	pawn := &base.Piece{Position: sq(t, "e2"), Side: base.White, Role: base.Pawn}
	board := &base.BoardState{Pieces: [2][]*base.Piece{{pawn}, nil}}
	var buf bytes.Buffer
	PrintBoard(&buf, render.Frame{Board: board, Selected: pawn}, true)
	if !strings.Contains(buf.String(), selectBg) {
		t.Error("no selection colour in output")
	}
}

func TestRunAgainstServer(t *testing.T) {
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

	var out bytes.Buffer
	c := NewCLI(sess, strings.NewReader("e2\nbogus\ne4\nq\n"), &out, false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if b := sess.Board(); b == nil || b.ActiveSide != base.Black {
		t.Fatalf("move not applied, board %+v", b)
	}
	for _, want := range []string{"Unknown command: bogus", "e4: submitted", "Black to move"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q", want)
		}
	}
}
