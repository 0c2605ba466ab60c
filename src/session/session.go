package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chessview/src/base"
	"chessview/src/engine"
	"chessview/src/logx"
)

var (
	ErrGameOver     = errors.New("game is over")
	ErrNoPosition   = errors.New("no position loaded")
	ErrMoveInFlight = errors.New("a move is already being submitted")
)

const watchRetry = 2 * time.Second

type Options struct {
	RequestTimeout time.Duration
	SuggestTimeout time.Duration
	Suggestions    bool
	Watch          bool
	QueueSize      int
	// OnChange runs on the loop goroutine whenever the rendered view may
	// have changed.
	OnChange func()
}

func DefaultOptions() Options {
	return Options{
		RequestTimeout: engine.RequestTimeout,
		SuggestTimeout: engine.SuggestTimeout,
		Suggestions:    true,
		Watch:          true,
		QueueSize:      64,
	}
}

// Session owns the single authoritative BoardState and its generation
// counter. It is created per game view and torn down with Close. All
// methods except Post must be called from the goroutine driving
// Pump/Step/Settle.
type Session struct {
	eng  engine.RuleEngine
	opts Options
	log  logx.Logger
	d    *dispatcher

	board      *base.BoardState
	generation uint64
	issued     uint64 // refresh tickets handed out
	applied    uint64 // newest ticket whose position is on screen
	floor      uint64 // tickets up to here were read before the last mutation
	lastPhase  base.Phase
	moving     bool

	selection Selection
	suggest   *Suggester
	notices   []Notice
}

func New(eng engine.RuleEngine, opts Options, log logx.Logger) *Session {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = engine.RequestTimeout
	}
	if opts.SuggestTimeout <= 0 {
		opts.SuggestTimeout = engine.SuggestTimeout
	}
	s := &Session{eng: eng, opts: opts, log: log, d: newDispatcher(opts.QueueSize)}
	s.suggest = newSuggester(eng, s.d, log.Named("suggest"), opts.SuggestTimeout, s.Generation, s.changed)
	return s
}

// Start loads the current position and, when the engine supports it,
// follows its push events until ctx ends or the session is closed.
func (s *Session) Start(ctx context.Context) {
	s.Refresh()
	w, ok := s.eng.(engine.Watcher)
	if !ok || !s.opts.Watch {
		return
	}
	go s.watch(ctx, w)
}

// Close cancels every background query. Completions still in flight are
// discarded.
func (s *Session) Close() {
	s.suggest.Stop()
	s.d.cancel()
}

// ---- loop ----

func (s *Session) Post(fn func())                 { s.d.post(fn) }
func (s *Session) Pump() int                      { return s.d.pump() }
func (s *Session) Step(ctx context.Context) error { return s.d.step(ctx) }

// Settle runs completions until no request started by this session is
// outstanding.
func (s *Session) Settle(ctx context.Context) error {
	for s.d.pending > 0 {
		if err := s.d.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ---- actions ----

func (s *Session) NewGame() {
	s.selection.Clear()
	s.suggest.Stop()
	ctx, cancel := context.WithTimeout(s.d.ctx, s.opts.RequestTimeout)
	spawn(s.d, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.eng.NewGame(ctx)
	}, func(_ struct{}, err error) {
		cancel()
		if err != nil {
			s.log.Errorf("new game: %v", err)
			s.notify(Notice{Kind: NoticeEngineError, Text: "Failed to start a new game"})
			return
		}
		s.log.Info("new game started")
		s.lastPhase = base.InProgress
		s.mutated()
	})
}

// Refresh fetches the full position. Responses are applied in ticket
// order: one that lands after a newer position is already shown, or that
// was read before the server state last changed, is dropped.
func (s *Session) Refresh() {
	s.issued++
	ticket := s.issued
	ctx, cancel := context.WithTimeout(s.d.ctx, s.opts.RequestTimeout)
	spawn(s.d, ctx, s.eng.Position, func(doc *engine.PositionDoc, err error) {
		cancel()
		s.applyPosition(ticket, doc, err)
	})
}

// SubmitMove sends mv and refreshes on success. Precondition failures are
// returned directly; the outcome of the request goes to done.
func (s *Session) SubmitMove(piece *base.Piece, mv base.MoveCandidate, done func(error)) error {
	if s.board == nil {
		return ErrNoPosition
	}
	if s.board.Phase.Terminal() {
		return ErrGameOver
	}
	if s.moving {
		return ErrMoveInFlight
	}
	s.moving = true
	s.suggest.Stop()

	payload := engine.Payload(mv)
	s.log.Infof("move %v %v: %s", piece.Side, piece.Role, payload)
	ctx, cancel := context.WithTimeout(s.d.ctx, s.opts.RequestTimeout)
	spawn(s.d, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.eng.Move(ctx, payload)
	}, func(_ struct{}, err error) {
		cancel()
		s.moving = false
		if err != nil {
			s.log.Infof("move %s failed: %v", payload, err)
		} else {
			s.mutated()
		}
		if done != nil {
			done(err)
		}
	})
	return nil
}

// Click feeds one pointer click on sq into the selection state machine and
// submits the move it produces. A move refused before it reaches the engine
// comes back as Deselected with Err set.
func (s *Session) Click(sq base.Square) Transition {
	tr := s.selection.Click(s.board, s.generation, sq)
	if tr.Outcome == Ignored {
		return tr
	}
	if tr.Outcome == Submitted {
		mv := tr.Move
		err := s.SubmitMove(tr.Piece, mv, func(err error) {
			if err != nil {
				s.notify(Notice{Kind: NoticeMoveRejected, Text: fmt.Sprintf("Move %s-%s rejected", mv.From, mv.To)})
			}
		})
		if err != nil {
			s.log.Infof("move not sent: %v", err)
			s.notify(Notice{Kind: NoticeMoveRejected, Text: fmt.Sprintf("Move %s-%s not sent: %v", mv.From, mv.To, err)})
			tr = Transition{Outcome: Deselected, Err: err}
		}
	}
	s.changed()
	return tr
}

// ClickPixel maps a pixel through layout; clicks off the board are ignored.
func (s *Session) ClickPixel(x, y float64, layout base.Layout) Transition {
	sq, ok := layout.PixelToSquare(x, y)
	if !ok {
		return Transition{Outcome: Ignored}
	}
	return s.Click(sq)
}

// SetSuggestions turns the best-move arrow on or off. Turning it on queries
// the current position right away.
func (s *Session) SetSuggestions(on bool) {
	if s.opts.Suggestions == on {
		return
	}
	s.opts.Suggestions = on
	switch {
	case !on:
		s.suggest.Stop()
	case s.board != nil && !s.board.Phase.Terminal():
		s.suggest.Restart(s.generation)
	}
	s.changed()
}

func (s *Session) Suggestions() bool { return s.opts.Suggestions }

// ---- read side ----

func (s *Session) Board() *base.BoardState      { return s.board }
func (s *Session) Generation() uint64           { return s.generation }
func (s *Session) Selected() *base.Piece        { return s.selection.Piece() }
func (s *Session) Suggestion() *base.Suggestion { return s.suggest.Current(s.generation) }
func (s *Session) SuggestStats() SuggestStats   { return s.suggest.Stats() }
func (s *Session) SuggestionInFlight() bool     { return s.suggest.InFlight() }
func (s *Session) Busy() bool                   { return s.d.pending > 0 }

// TakeNotices returns and clears the pending notices.
func (s *Session) TakeNotices() []Notice {
	n := s.notices
	s.notices = nil
	return n
}

// ---- internals ----

func (s *Session) applyPosition(ticket uint64, doc *engine.PositionDoc, err error) {
	if err != nil {
		s.log.Warnf("refresh #%d failed: %v", ticket, err)
		return
	}
	if ticket <= s.applied {
		s.log.Infof("drop stale position #%d, #%d already applied", ticket, s.applied)
		return
	}
	if ticket <= s.floor {
		s.log.Infof("drop stale position #%d, read before the last change", ticket)
		return
	}
	board, err := doc.BoardState()
	if err != nil {
		s.log.Warnf("refresh #%d: %v", ticket, err)
		return
	}
	s.applied = ticket
	s.replace(board)
}

// mutated runs after the engine accepted a new game or a move. Positions
// already in flight predate the change.
func (s *Session) mutated() {
	s.floor = s.issued
	s.Refresh()
}

func (s *Session) replace(board *base.BoardState) {
	s.board = board
	s.generation++
	s.log.Debugf("generation %d: %v to move, %d moves, %v", s.generation, board.ActiveSide, board.LegalMoveCount(), board.Phase)

	s.selection.Revalidate(board, s.generation)
	if board.Phase.Terminal() {
		s.suggest.Stop()
		if board.Phase != s.lastPhase {
			s.notify(gameOverNotice(board.Phase))
		}
	} else if s.opts.Suggestions {
		s.suggest.Restart(s.generation)
	}
	s.lastPhase = board.Phase
	s.changed()
}

func (s *Session) notify(n Notice) {
	s.notices = append(s.notices, n)
	s.changed()
}

func (s *Session) changed() {
	if s.opts.OnChange != nil {
		s.opts.OnChange()
	}
}

func (s *Session) watch(parent context.Context, w engine.Watcher) {
	ctx, cancel := context.WithCancel(s.d.ctx)
	defer cancel()
	stop := context.AfterFunc(parent, cancel)
	defer stop()

	for {
		err := w.Watch(ctx, func(ev engine.Event) {
			if ev.Type == engine.EventPosition {
				s.log.Debugf("position event, version %d", ev.Version)
				s.Post(s.Refresh)
			}
		})
		if ctx.Err() != nil {
			return
		}
		s.log.Warnf("position watch stopped: %v", err)
		select {
		case <-time.After(watchRetry):
		case <-ctx.Done():
			return
		}
	}
}
