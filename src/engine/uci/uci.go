package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"chessview/src/logx"
)

const HandshakeTimeout = 3 * time.Second

var ErrNotRunning = errors.New("no running uci-process")

// Analysis is the last search report of the engine.
type Analysis struct {
	Depth    int
	Nodes    int64
	TimeMs   int64
	ScoreCP  int
	MateIn   int
	PV       []string
	BestMove string // long algebraic, e.g. "e2e4" or "e7e8q"
}

// Executor drives an external UCI engine over stdin/stdout. One search runs
// at a time.
type Executor struct {
	// init
	path string
	args []string

	// process
	cmd *exec.Cmd
	in  io.WriteCloser
	out io.ReadCloser

	// read stdout
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	search sync.Mutex // serialises Search
	mu     sync.Mutex
	info   Analysis
	lines  chan string
	best   chan string
	logx   logx.Logger
}

// to open a process, need to call Init()
func NewExecutor(log logx.Logger, enginePath string, engineArgs ...string) *Executor {
	return &Executor{path: enginePath, args: engineArgs, logx: log, best: make(chan string, 1)}
}

// open process and check
func (e *Executor) Init() error {
	if e.path == "" {
		return errors.New("engine path is empty")
	}

	cmd := exec.Command(e.path, e.args...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("connect to engine stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("connect to engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s engine: %w", e.path, err)
	}

	e.cmd = cmd
	e.in = in
	e.out = out
	e.lines = make(chan string, 256)

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.stdoutLoop(e.ctx)

	if err := e.handshake("uci", "uciok"); err != nil {
		go e.Close()
		return err
	}
	if err := e.handshake("isready", "readyok"); err != nil {
		go e.Close()
		return err
	}
	e.logx.Infof("open engine: %s", e.path)
	return nil
}

func (e *Executor) Exec(cmd string) error {
	if e.in == nil {
		return ErrNotRunning
	}
	e.logx.Debugf("TO ENGINE: %s", cmd)
	_, err := io.WriteString(e.in, cmd+"\n")
	return err
}

// Search sets the position and searches for movetime. Cancelling ctx sends
// "stop" and returns ctx.Err() once the engine has answered.
func (e *Executor) Search(ctx context.Context, fen string, movetime time.Duration) (Analysis, error) {
	if e.cmd == nil {
		return Analysis{}, ErrNotRunning
	}
	e.search.Lock()
	defer e.search.Unlock()

	select {
	case <-e.best: // leftover from an abandoned search
	default:
	}
	e.mu.Lock()
	e.info = Analysis{}
	e.mu.Unlock()

	if err := e.Exec("position fen " + fen); err != nil {
		return Analysis{}, err
	}
	if err := e.Exec(fmt.Sprintf("go movetime %d", movetime.Milliseconds())); err != nil {
		return Analysis{}, err
	}

	// the engine may overrun movetime slightly
	timer := time.NewTimer(movetime + HandshakeTimeout)
	defer timer.Stop()
	select {
	case bm := <-e.best:
		e.mu.Lock()
		res := e.info
		e.mu.Unlock()
		res.BestMove = bm
		return res, nil
	case <-ctx.Done():
		_ = e.Exec("stop")
		e.drainBest()
		return Analysis{}, ctx.Err()
	case <-timer.C:
		_ = e.Exec("stop")
		e.drainBest()
		return Analysis{}, errors.New("timeout waiting for bestmove")
	case <-e.ctx.Done():
		return Analysis{}, ErrNotRunning
	}
}

// Terminate process
func (e *Executor) Close() {
	if e.cmd == nil {
		return
	}
	_ = e.Exec("quit")
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
		e.wg.Wait()
	}
	_ = e.cmd.Wait()
	e.logx.Info("uci-process terminated")
}

func (e *Executor) drainBest() {
	select {
	case <-e.best:
	case <-time.After(HandshakeTimeout):
	case <-e.ctx.Done():
	}
}

func (e *Executor) handshake(cmd, want string) error {
	if err := e.Exec(cmd); err != nil {
		return err
	}
	return e.waitCompare(want, HandshakeTimeout)
}

func (e *Executor) waitCompare(str string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line := <-e.lines:
			if strings.HasPrefix(line, str) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for %s", str)
		case <-e.ctx.Done():
			return errors.New("stopped")
		}
	}
}

func (e *Executor) stdoutLoop(ctx context.Context) {
	defer e.wg.Done()
	scr := bufio.NewScanner(e.out)
	for scr.Scan() {
		line := strings.TrimSpace(scr.Text())

		e.logx.Debugf("ENGINE: %s", line)
		switch {
		case strings.HasPrefix(line, "info "):
			if info, ok := parseInfo(line); ok {
				e.mu.Lock()
				e.info = info
				e.mu.Unlock()
			}
		case strings.HasPrefix(line, "bestmove "):
			if f := strings.Fields(line); len(f) >= 2 {
				select {
				case e.best <- f[1]:
				default:
				}
			}
		default:
			select {
			case e.lines <- line:
			default:
				e.logx.Debugf("drop engine line (buffer full)")
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// parseInfo reads a UCI "info" line. Lines without a score or pv (currmove
// reports, strings) are not search results.
func parseInfo(line string) (Analysis, bool) {
	var info Analysis
	found := false
	fld := strings.Fields(line)
	n := len(fld)
	for i := 1; i < n; i++ {
		switch fld[i] {
		case "depth":
			if i+1 < n {
				info.Depth, _ = strconv.Atoi(fld[i+1])
				i++
			}
		case "nodes":
			if i+1 < n {
				info.Nodes, _ = strconv.ParseInt(fld[i+1], 10, 64)
				i++
			}
		case "time":
			if i+1 < n {
				info.TimeMs, _ = strconv.ParseInt(fld[i+1], 10, 64)
				i++
			}
		case "score":
			if i+2 < n {
				v, err := strconv.Atoi(fld[i+2])
				if err == nil {
					switch fld[i+1] {
					case "cp":
						info.ScoreCP, info.MateIn = v, 0
						found = true
					case "mate":
						info.MateIn = v
						found = true
					}
				}
				i += 2
			}
		case "pv":
			if i+1 < n {
				info.PV = append([]string(nil), fld[i+1:]...)
				found = true
			}
			i = n
		case "string":
			return Analysis{}, false
		default:
			// seldepth, currmove, hashfull, ...
		}
	}
	return info, found
}
