package session

import (
	"context"
	"errors"
	"time"

	"chessview/src/base"
	"chessview/src/engine"
	"chessview/src/logx"
)

type SuggestStats struct {
	Issued    int
	Cancelled int
	Accepted  int
	Dropped   int // result arrived for an outdated generation
	Failed    int
}

// Suggester keeps at most one best-move query in flight and accepts a
// result only for the generation that is still current when it lands.
// Failures are swallowed: a missing arrow never blocks interaction.
type Suggester struct {
	eng      engine.RuleEngine
	d        *dispatcher
	log      logx.Logger
	timeout  time.Duration
	current  func() uint64
	onChange func()

	inflight *Token
	accepted *base.Suggestion
	stats    SuggestStats
}

func newSuggester(eng engine.RuleEngine, d *dispatcher, log logx.Logger, timeout time.Duration, current func() uint64, onChange func()) *Suggester {
	return &Suggester{eng: eng, d: d, log: log, timeout: timeout, current: current, onChange: onChange}
}

// Restart cancels the query in flight, if any, and asks again for gen.
func (s *Suggester) Restart(gen uint64) {
	s.cancelInflight()
	tok := newToken(s.d.ctx, gen)
	s.inflight = tok
	s.stats.Issued++
	s.log.Debugf("suggestion query for generation %d", gen)

	ctx, cancel := context.WithTimeout(tok.ctx, s.timeout)
	spawn(s.d, ctx, s.eng.BestMove, func(doc *engine.MoveDoc, err error) {
		cancel()
		s.complete(tok, doc, err)
	})
}

// Stop cancels the query in flight and hides the current suggestion.
func (s *Suggester) Stop() {
	s.cancelInflight()
	if s.accepted != nil {
		s.accepted = nil
		s.onChange()
	}
}

func (s *Suggester) InFlight() bool { return s.inflight != nil }

// Current returns the accepted suggestion if it belongs to gen.
func (s *Suggester) Current(gen uint64) *base.Suggestion {
	if s.accepted == nil || s.accepted.Generation != gen {
		return nil
	}
	return s.accepted
}

func (s *Suggester) Stats() SuggestStats { return s.stats }

func (s *Suggester) cancelInflight() {
	if s.inflight == nil {
		return
	}
	s.inflight.Cancel()
	s.inflight = nil
	s.stats.Cancelled++
}

func (s *Suggester) complete(tok *Token, doc *engine.MoveDoc, err error) {
	defer tok.Cancel()
	if s.inflight == tok {
		s.inflight = nil
	}

	switch {
	case tok.Cancelled():
		s.log.Debugf("suggestion for generation %d cancelled", tok.Generation())
		if err == nil {
			s.stats.Dropped++
		}
		return
	case err == nil && doc == nil:
		err = engine.ErrBadDocument
		fallthrough
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			s.stats.Failed++
		}
		s.log.Debugf("suggestion for generation %d unavailable: %v", tok.Generation(), err)
		return
	case tok.Generation() != s.current():
		s.stats.Dropped++
		s.log.Debugf("drop suggestion for generation %d, board is at %d", tok.Generation(), s.current())
		return
	}

	mv, err := doc.Candidate()
	if err != nil {
		s.stats.Failed++
		s.log.Debugf("bad suggestion: %v", err)
		return
	}
	s.accepted = &base.Suggestion{Move: mv, Generation: tok.Generation()}
	s.stats.Accepted++
	s.onChange()
}
