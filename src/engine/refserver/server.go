// Package refserver is a small rule engine speaking the chessview HTTP
// protocol, backed by github.com/notnil/chess.
package refserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/notnil/chess"

	"chessview/src/engine"
	"chessview/src/logx"
)

type Config struct {
	// FEN of the starting position; empty for the standard one.
	FEN            string
	Agent          Agent
	SuggestTimeout time.Duration
}

type Server struct {
	mu      sync.Mutex
	game    *chess.Game
	gameID  string
	version uint64
	newGame func(*chess.Game)

	agent   Agent
	timeout time.Duration
	// cancels the running best_move search; a newer request supersedes it
	searchCancel context.CancelFunc
	searchSeq    uint64
	hub          *hub
	app          *fiber.App
	log          logx.Logger
}

func New(cfg Config, log logx.Logger) (*Server, error) {
	s := &Server{
		agent:   cfg.Agent,
		timeout: cfg.SuggestTimeout,
		hub:     newHub(log.Named("hub")),
		log:     log,
	}
	if s.agent == nil {
		s.agent = Greedy{}
	}
	if s.timeout <= 0 {
		s.timeout = engine.SuggestTimeout
	}
	if cfg.FEN != "" {
		opt, err := chess.FEN(cfg.FEN)
		if err != nil {
			return nil, err
		}
		s.newGame = opt
	}
	s.reset()

	s.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	s.app.Use(s.logRequests)
	g := s.app.Group("/game")
	g.Get("/new", s.handleNew)
	g.Get("/info", s.handleInfo)
	g.Get("/move/:payload", s.handleMove)
	g.Get("/best_move", s.handleBestMove)
	g.Use("/events", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	g.Get("/events", websocket.New(s.hub.serve))
	return s, nil
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Infof("rule engine listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Serve(ln net.Listener) error { return s.app.Listener(ln) }

func (s *Server) Shutdown() error { return s.app.Shutdown() }

// reset starts a fresh game. Caller holds mu or owns s exclusively.
func (s *Server) reset() {
	if s.newGame != nil {
		s.game = chess.NewGame(s.newGame)
	} else {
		s.game = chess.NewGame()
	}
	s.gameID = uuid.NewString()
	s.version++
}

func (s *Server) changed() engine.Event {
	return engine.Event{Type: engine.EventPosition, Game: s.gameID, Version: s.version}
}

func (s *Server) handleNew(c *fiber.Ctx) error {
	s.mu.Lock()
	s.reset()
	ev := s.changed()
	s.mu.Unlock()

	s.log.Infof("new game %s", ev.Game)
	s.hub.broadcast(ev)
	return c.SendString("Successfully created a new game")
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	s.mu.Lock()
	doc := positionDoc(s.game)
	s.mu.Unlock()
	return c.JSON(doc)
}

func (s *Server) handleMove(c *fiber.Ctx) error {
	payload := c.Params("payload")
	s.mu.Lock()
	m, err := findMove(s.game, payload)
	if err == nil {
		err = s.game.Move(m)
	}
	if err != nil {
		s.mu.Unlock()
		s.log.Infof("refuse move %s: %v", payload, err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to find move")
	}
	s.version++
	ev := s.changed()
	outcome, method := s.game.Outcome(), s.game.Method()
	s.mu.Unlock()

	s.log.Infof("move %s (%s)", payload, m)
	if outcome != chess.NoOutcome {
		s.log.Infof("game %s over: %s by %s", ev.Game, outcome, method)
	}
	s.hub.broadcast(ev)
	return c.SendString("success")
}

func (s *Server) handleBestMove(c *fiber.Ctx) error {
	s.mu.Lock()
	pos := s.game.Position()
	over := s.game.Outcome() != chess.NoOutcome
	s.mu.Unlock()
	if over {
		return c.Status(fiber.StatusBadRequest).SendString("game is over")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	seq := s.startSearch(cancel)
	defer s.endSearch(seq, cancel)
	m, err := s.agent.Suggest(ctx, pos)
	if err != nil {
		s.log.Warnf("best move: %v", err)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return c.Status(fiber.StatusGatewayTimeout).SendString("search timed out")
		case errors.Is(err, context.Canceled):
			return c.Status(fiber.StatusConflict).SendString("search superseded")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("search failed")
	}
	return c.JSON(moveDoc(pos, m))
}

// startSearch cancels the search still running for an earlier request.
// Clients only ever wait for their latest query.
func (s *Server) startSearch(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchCancel != nil {
		s.searchCancel()
	}
	s.searchSeq++
	s.searchCancel = cancel
	return s.searchSeq
}

func (s *Server) endSearch(seq uint64, cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchSeq == seq {
		s.searchCancel = nil
	}
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debugf("%s %s %d %v", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
	return err
}
