package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"chessview/src/base"
	"chessview/src/render"
	"chessview/src/session"
)

// quitGrace bounds how long q waits for a submitted move to land.
const quitGrace = 2 * time.Second

const help = "Enter a square (e2) to select or move, 'new', 'hint', 'flip', 'board', 'status', 'refresh', 'q' to quit."

type CLIProcessing struct {
	sess  *session.Session
	in    io.Reader
	out   io.Writer
	color bool

	flipped  bool
	quit     bool
	lastGen  uint64
	lastHint *base.Suggestion
}

func NewCLI(s *session.Session, in io.Reader, out io.Writer, color bool) *CLIProcessing {
	return &CLIProcessing{sess: s, in: in, out: out, color: color}
}

// Run reads commands line by line. Input is posted into the session loop,
// so every command runs on the goroutine that owns the board.
func (c *CLIProcessing) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, help)
	c.sess.Start(ctx)
	// commands typed before the first position arrives would be ignored
	for c.sess.Board() == nil && c.sess.Busy() {
		if err := c.sess.Step(ctx); err != nil {
			return err
		}
	}
	c.afterStep()

	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			c.sess.Post(func() { c.handle(line) })
		}
		c.sess.Post(func() { c.quit = true })
	}()

	for !c.quit {
		if err := c.sess.Step(ctx); err != nil {
			return err
		}
		c.afterStep()
	}

	sctx, cancel := context.WithTimeout(ctx, quitGrace)
	defer cancel()
	for c.sess.Busy() && !c.sess.SuggestionInFlight() {
		if err := c.sess.Step(sctx); err != nil {
			break
		}
	}
	c.afterStep()
	return nil
}

func (c *CLIProcessing) handle(line string) {
	switch line {
	case "":
	case "q", "Q", "quit":
		c.quit = true
	case "new":
		c.sess.NewGame()
	case "hint":
		on := !c.sess.Suggestions()
		c.sess.SetSuggestions(on)
		fmt.Fprintf(c.out, "hints: %v\n", on)
	case "flip":
		c.flipped = !c.flipped
		c.draw()
	case "board":
		c.draw()
	case "status":
		c.printStatus()
	case "refresh":
		c.sess.Refresh()
	case "help", "?":
		fmt.Fprintln(c.out, help)
	default:
		sq, err := base.ParseAlgebraic(line)
		if err != nil {
			fmt.Fprintf(c.out, "Unknown command: %s\n", line)
			return
		}
		tr := c.sess.Click(sq)
		switch tr.Outcome {
		case session.Selected, session.Deselected:
			c.draw()
		case session.Submitted:
			fmt.Fprintf(c.out, "%s: submitted %s\n", line, tr.Move)
		default:
			fmt.Fprintf(c.out, "%s: ignored\n", line)
		}
	}
}

// afterStep prints notices and redraws when the position or the hint moved.
func (c *CLIProcessing) afterStep() {
	for _, n := range c.sess.TakeNotices() {
		fmt.Fprintln(c.out, n.Text)
	}
	gen, hint := c.sess.Generation(), c.sess.Suggestion()
	if gen == c.lastGen && hint == c.lastHint {
		return
	}
	c.lastGen, c.lastHint = gen, hint
	c.draw()
	c.printStatus()
}

func (c *CLIProcessing) draw() {
	if c.sess.Board() == nil {
		fmt.Fprintln(c.out, "Waiting for engine")
		return
	}
	f := render.Frame{
		Board:      c.sess.Board(),
		Generation: c.sess.Generation(),
		Selected:   c.sess.Selected(),
		Suggestion: c.sess.Suggestion(),
		Layout:     base.Layout{Flipped: c.flipped},
	}
	PrintBoard(c.out, f, c.color)
	if f.Suggestion != nil {
		fmt.Fprintf(c.out, "hint: %s%s\n", f.Suggestion.Move.From, f.Suggestion.Move.To)
	}
}

func (c *CLIProcessing) printStatus() {
	for _, l := range c.sess.Status().Lines() {
		fmt.Fprintln(c.out, l)
	}
}
