package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"chessview/src/base"
	"chessview/src/engine/httpengine"
	"chessview/src/engine/refserver"
	"chessview/src/engine/uci"
	"chessview/src/logx"
	"chessview/src/render"
	"chessview/src/session"
	clic "chessview/ui/cli"
	"chessview/ui/gconf"
	"chessview/ui/gui"
	"chessview/ui/tui"
)

const logfile string = "chessview.log"

const snapshotSquare = 60

func GetLogger(file *os.File, c *cli.Command, debug bool) *logx.Logx {
	level := c.String("level")
	if debug && !c.IsSet("level") {
		level = "debug"
	}
	l := logx.NewLogx(
		logx.GetLoggerLevelByString(level),
		debug,
		c.Bool("console"),
	)
	l.InitLogger(file)
	return l
}

// env is what every front-end needs: the config after flag overrides and
// a logger writing to the log file.
type env struct {
	cfg  *gconf.Config
	log  *logx.Logx
	file *os.File
}

func (e *env) Close() {
	_ = e.log.Sync()
	if e.file != nil {
		e.file.Close()
	}
}

func setup(c *cli.Command) (*env, error) {
	cfg, err := gconf.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("server") {
		cfg.ServerURL = c.String("server")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	e := &env{cfg: cfg}
	if !c.Bool("console") {
		e.file, err = os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("error open logfile: %w", err)
		}
	}
	e.log = GetLogger(e.file, c, cfg.Debug)
	return e, nil
}

func (e *env) newSession(watch bool) (*session.Session, error) {
	client, err := httpengine.New(e.cfg.ServerURL, e.log.Named("http"))
	if err != nil {
		return nil, err
	}
	opts := session.DefaultOptions()
	opts.RequestTimeout = e.cfg.RequestTimeout()
	opts.Suggestions = e.cfg.Suggestions
	opts.Watch = watch && e.cfg.Watch
	return session.New(client, opts, e.log.Named("session")), nil
}

func RunGUI(ctx context.Context, c *cli.Command) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()
	s, err := e.newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	s.Start(ctx)
	return gui.NewGUI(ctx, s, e.cfg, e.log.Named("gui")).Run()
}

func RunTUI(ctx context.Context, c *cli.Command) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()
	s, err := e.newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	err = tui.NewTUI(s, screen, render.PaletteFromString(e.cfg.Theme), e.log.Named("tui")).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func RunCLI(ctx context.Context, c *cli.Command) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()
	s, err := e.newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	color := term.IsTerminal(int(os.Stdout.Fd())) && !c.Bool("plain")
	if color {
		clic.EnableANSI()
	}
	err = clic.NewCLI(s, os.Stdin, os.Stdout, color).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func RunServe(ctx context.Context, c *cli.Command) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := refserver.Config{FEN: c.String("fen"), SuggestTimeout: c.Duration("movetime") + 5*time.Second}
	if path := e.cfg.EnginePath(c.String("uci")); path != "" {
		ex := uci.NewExecutor(e.log.Named("uci"), path)
		if err := ex.Init(); err != nil {
			return fmt.Errorf("start uci engine %s: %w", path, err)
		}
		defer ex.Close()
		cfg.Agent = &refserver.UCIAgent{Exec: ex, MoveTime: c.Duration("movetime")}
	}
	srv, err := refserver.New(cfg, e.log.Named("server"))
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			e.log.Warnf("shutdown: %v", err)
		}
	}()
	return srv.Listen(c.String("addr"))
}

// RunSnapshot renders the server's current position to a PNG without
// opening a window.
func RunSnapshot(ctx context.Context, c *cli.Command) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()
	s, err := e.newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	sprites := render.LoadSprites(ctx, e.cfg.SpritesDir, e.log.Named("sprites"))
	sctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout()+c.Duration("wait"))
	defer cancel()
	s.Start(sctx)
	// a slow suggestion only costs the arrow
	if err := s.Settle(sctx); err != nil && s.Board() == nil {
		return fmt.Errorf("no position from %s: %w", e.cfg.ServerURL, err)
	}
	if s.Board() == nil {
		return fmt.Errorf("no position from %s", e.cfg.ServerURL)
	}
	select {
	case <-sprites.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	f := render.Frame{
		Board:      s.Board(),
		Generation: s.Generation(),
		Suggestion: s.Suggestion(),
		Layout:     base.SquareLayout(0, 0, snapshotSquare),
	}
	f.Layout.Flipped = c.Bool("flip")
	out := c.String("out")
	if err := render.Snapshot(f, s.Status().Lines(), sprites, render.PaletteFromString(e.cfg.Theme)).SavePNG(out); err != nil {
		return err
	}
	fmt.Println("saved", out)
	return nil
}

func RunChessView() error {
	df := &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "enable debug mod",
	}
	lf := &cli.StringFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Value:   "info",
		Usage:   "logger level (debug|info|warn|error)",
	}
	cf := &cli.BoolFlag{
		Name:    "console",
		Aliases: []string{"c"},
		Usage:   "log to stdout with console encoding",
	}
	conf := &cli.StringFlag{
		Name:  "config",
		Usage: "path to config file",
	}
	sf := &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "rule engine base url",
	}
	// root flags are inherited by every subcommand
	common := []cli.Flag{df, lf, cf, conf, sf}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return (&cli.Command{
		Name:  "chessview",
		Usage: "chess board client for a remote rule engine",
		Flags: common,
		Commands: []*cli.Command{
			{
				Name:   "gui",
				Usage:  "window front-end",
				Action: RunGUI,
			},
			{
				Name:   "tui",
				Usage:  "terminal front-end with mouse support",
				Action: RunTUI,
			},
			{
				Name:  "cli",
				Usage: "line mode, squares are typed as e2",
				Flags: []cli.Flag{&cli.BoolFlag{
					Name:  "plain",
					Usage: "no ANSI colours",
				}},
				Action: RunCLI,
			},
			{
				Name:  "serve",
				Usage: "run the reference rule engine",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address"},
					&cli.StringFlag{Name: "uci", Usage: "path to a UCI engine for best_move, overrides uci_path"},
					&cli.StringFlag{Name: "fen", Usage: "starting position"},
					&cli.DurationFlag{Name: "movetime", Value: time.Second, Usage: "UCI search time"},
				},
				Action: RunServe,
			},
			{
				Name:  "snapshot",
				Usage: "save the current position as PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "board.png", Usage: "output file"},
					&cli.BoolFlag{Name: "flip", Usage: "black at the bottom"},
					&cli.DurationFlag{Name: "wait", Value: 3 * time.Second, Usage: "how long to wait for the suggestion"},
				},
				Action: RunSnapshot,
			},
		},
		Action: RunGUI,
	}).Run(ctx, os.Args)
}
