package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chessview/src/base"
	"chessview/src/engine"
	"chessview/src/logx"
)

// fakeEngine serves canned positions. A successful move switches to the
// position registered for its payload.
type fakeEngine struct {
	mu       sync.Mutex
	position *engine.PositionDoc
	start    *engine.PositionDoc
	next     map[string]*engine.PositionDoc
	reject   bool
	moves    []string
	reads    int
	newGames int
	// when set, each Position call reads the board, hands out a gate and
	// answers only once the gate is closed
	held chan chan struct{}

	best     chan *engine.MoveDoc // nil: BestMove fails at once
	bestErr  error
	bestRuns int
}

func newFakeEngine(doc *engine.PositionDoc) *fakeEngine {
	return &fakeEngine{position: doc, start: doc, next: map[string]*engine.PositionDoc{}}
}

func (f *fakeEngine) NewGame(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newGames++
	f.position = f.start
	return nil
}

func (f *fakeEngine) Position(ctx context.Context) (*engine.PositionDoc, error) {
	f.mu.Lock()
	f.reads++
	cur, held := f.position, f.held
	f.mu.Unlock()
	if cur == nil {
		return nil, engine.ErrNoGame
	}
	doc := *cur
	if held != nil {
		gate := make(chan struct{})
		held <- gate
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &doc, nil
}

func (f *fakeEngine) Move(ctx context.Context, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, payload)
	doc, ok := f.next[payload]
	if f.reject || !ok {
		return engine.ErrMoveRejected
	}
	f.position = doc
	return nil
}

func (f *fakeEngine) BestMove(ctx context.Context) (*engine.MoveDoc, error) {
	f.mu.Lock()
	f.bestRuns++
	best, bestErr := f.best, f.bestErr
	f.mu.Unlock()
	if best == nil {
		if bestErr == nil {
			bestErr = errors.New("no search available")
		}
		return nil, bestErr
	}
	select {
	case mv := <-best:
		return mv, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeEngine) set(doc *engine.PositionDoc) {
	f.mu.Lock()
	f.position = doc
	f.mu.Unlock()
}

func (f *fakeEngine) sentMoves() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.moves...)
}

// Kings on e1/e8, pawns on e2/e7, white to move.
func openingDoc() *engine.PositionDoc {
	return &engine.PositionDoc{
		State:         0,
		FullmoveCount: 1,
		Whites: []engine.PieceDoc{
			{Pos: 12, Kind: "pawn", Attacks: []engine.MoveDoc{{From: 12, To: 20, Kind: 0}, {From: 12, To: 28, Kind: 2}}},
			{Pos: 4, Kind: "king", Attacks: []engine.MoveDoc{{From: 4, To: 3, Kind: 0}, {From: 4, To: 5, Kind: 0}}},
		},
		Blacks: []engine.PieceDoc{
			{Pos: 52, Kind: "pawn"},
			{Pos: 60, Kind: "king"},
		},
	}
}

func afterE4Doc() *engine.PositionDoc {
	return &engine.PositionDoc{
		State:         1,
		HalfmoveCount: 0,
		FullmoveCount: 1,
		Whites: []engine.PieceDoc{
			{Pos: 28, Kind: "pawn"},
			{Pos: 4, Kind: "king"},
		},
		Blacks: []engine.PieceDoc{
			{Pos: 52, Kind: "pawn", Attacks: []engine.MoveDoc{{From: 52, To: 44, Kind: 0}, {From: 52, To: 36, Kind: 2}}},
			{Pos: 60, Kind: "king", Attacks: []engine.MoveDoc{{From: 60, To: 59, Kind: 0}}},
		},
	}
}

func whiteWinsDoc() *engine.PositionDoc {
	return &engine.PositionDoc{
		State: 2,
		Whites: []engine.PieceDoc{
			{Pos: 4, Kind: "king"},
			{Pos: 62, Kind: "queen"},
		},
		Blacks: []engine.PieceDoc{{Pos: 63, Kind: "king"}},
	}
}

func sq(t *testing.T, name string) base.Square {
	t.Helper()
	s, err := base.ParseAlgebraic(name)
	if err != nil {
		t.Fatalf("ParseAlgebraic(%q): %v", name, err)
	}
	return s
}

func newTestSession(t *testing.T, f *fakeEngine, suggestions bool) *Session {
	t.Helper()
	opts := DefaultOptions()
	opts.Suggestions = suggestions
	opts.Watch = false
	s := New(f, opts, logx.Nop())
	t.Cleanup(s.Close)
	return s
}

func settle(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

func started(t *testing.T, f *fakeEngine, suggestions bool) *Session {
	t.Helper()
	s := newTestSession(t, f, suggestions)
	s.Start(context.Background())
	settle(t, s)
	if s.Board() == nil {
		t.Fatal("no board after start")
	}
	return s
}

func TestStartLoadsPosition(t *testing.T) {
	s := started(t, newFakeEngine(openingDoc()), false)
	if s.Generation() != 1 {
		t.Errorf("Generation = %d, want 1", s.Generation())
	}
	st := s.Status()
	if !st.Ready || st.ActiveSide != base.White || st.LegalMoves != 4 {
		t.Errorf("Status = %+v", st)
	}
	lines := st.Lines()
	if lines[0] != "White to move" || lines[1] != "There are 4 moves that can be made" {
		t.Errorf("Lines = %q", lines)
	}
}

func TestClickSubmitsMove(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.next["12.28.2"] = afterE4Doc()
	s := started(t, f, false)

	if tr := s.Click(sq(t, "e2")); tr.Outcome != Selected {
		t.Fatalf("click e2 = %v, want selected", tr.Outcome)
	}
	tr := s.Click(sq(t, "e4"))
	if tr.Outcome != Submitted || tr.Move.Kind != base.DoubleJump {
		t.Fatalf("click e4 = %+v", tr)
	}
	if s.Selected() != nil {
		t.Error("selection not cleared on submit")
	}
	settle(t, s)

	if got := f.sentMoves(); len(got) != 1 || got[0] != "12.28.2" {
		t.Errorf("moves sent = %q", got)
	}
	if s.Generation() != 2 || s.Board().ActiveSide != base.Black {
		t.Errorf("generation %d, active %v", s.Generation(), s.Board().ActiveSide)
	}
	if n := s.TakeNotices(); len(n) != 0 {
		t.Errorf("unexpected notices %+v", n)
	}
}

func TestClickTransitions(t *testing.T) {
	s := started(t, newFakeEngine(openingDoc()), false)

	tests := []struct {
		name   string
		clicks []string
		want   []Outcome
	}{
		{"empty square", []string{"a5"}, []Outcome{Ignored}},
		{"opponent piece while white moves", []string{"e7"}, []Outcome{Ignored}},
		{"own square deselects", []string{"e2", "e2"}, []Outcome{Selected, Deselected}},
		{"other own piece deselects", []string{"e2", "e1"}, []Outcome{Selected, Deselected}},
		{"opponent piece deselects", []string{"e2", "e7"}, []Outcome{Selected, Deselected}},
		{"non destination deselects", []string{"e1", "e2", "e2"}, []Outcome{Selected, Deselected, Selected}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.selection.Clear()
			for i, c := range tt.clicks {
				if got := s.Click(sq(t, c)).Outcome; got != tt.want[i] {
					t.Errorf("click %d on %s = %v, want %v", i, c, got, tt.want[i])
				}
			}
		})
	}
}

func TestClickPixel(t *testing.T) {
	s := started(t, newFakeEngine(openingDoc()), false)
	layout := base.SquareLayout(0, 0, 50)

	if tr := s.ClickPixel(-1, 10, layout); tr.Outcome != Ignored {
		t.Errorf("off board = %v", tr.Outcome)
	}
	// e2: file 4, row 6
	if tr := s.ClickPixel(4*50+25, 6*50+25, layout); tr.Outcome != Selected {
		t.Errorf("e2 = %v", tr.Outcome)
	}
	layout.Flipped = true
	if tr := s.ClickPixel(3*50+25, 1*50+25, layout); tr.Outcome != Deselected {
		t.Errorf("flipped e2 = %v", tr.Outcome)
	}
}

func TestRejectedMoveKeepsBoard(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.reject = true
	s := started(t, f, false)
	before := s.Board()

	s.Click(sq(t, "e2"))
	if tr := s.Click(sq(t, "e4")); tr.Outcome != Submitted {
		t.Fatalf("click e4 = %v", tr.Outcome)
	}
	settle(t, s)

	if s.Board() != before || s.Generation() != 1 {
		t.Error("board replaced after rejected move")
	}
	if s.Selected() != nil {
		t.Error("selection not idle after rejected move")
	}
	notices := s.TakeNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeMoveRejected || notices[0].Modal() {
		t.Errorf("notices = %+v", notices)
	}
	if f.reads != 1 {
		t.Errorf("position read %d times, want 1", f.reads)
	}
}

func TestSubmitMoveOneAtATime(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.next["12.28.2"] = afterE4Doc()
	s := started(t, f, false)

	p := s.Board().PieceAt(sq(t, "e2"))
	if err := s.SubmitMove(p, p.LegalMoves[1], nil); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if err := s.SubmitMove(p, p.LegalMoves[0], nil); !errors.Is(err, ErrMoveInFlight) {
		t.Errorf("second SubmitMove = %v", err)
	}
	settle(t, s)
}

func TestClickWhileMoveInFlight(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.next["12.28.2"] = afterE4Doc()
	s := started(t, f, false)

	s.Click(sq(t, "e2"))
	if tr := s.Click(sq(t, "e4")); tr.Outcome != Submitted {
		t.Fatalf("click e4 = %v", tr.Outcome)
	}
	// the old board is still shown while e2-e4 is pending
	s.Click(sq(t, "e2"))
	tr := s.Click(sq(t, "e3"))
	if tr.Outcome == Submitted || !errors.Is(tr.Err, ErrMoveInFlight) {
		t.Errorf("second move = %+v", tr)
	}
	notices := s.TakeNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeMoveRejected || notices[0].Modal() {
		t.Errorf("notices = %+v", notices)
	}
	settle(t, s)
	if got := f.sentMoves(); len(got) != 1 || got[0] != "12.28.2" {
		t.Errorf("moves sent = %q", got)
	}
}

func TestSubmitMoveWithoutPosition(t *testing.T) {
	s := newTestSession(t, newFakeEngine(openingDoc()), false)
	err := s.SubmitMove(&base.Piece{}, base.MoveCandidate{}, nil)
	if !errors.Is(err, ErrNoPosition) {
		t.Errorf("SubmitMove = %v", err)
	}
}

func TestTerminalPosition(t *testing.T) {
	f := newFakeEngine(whiteWinsDoc())
	s := started(t, f, true)

	notices := s.TakeNotices()
	if len(notices) != 1 || notices[0].Text != "CHECKMATE: White Wins" || !notices[0].Modal() {
		t.Fatalf("notices = %+v", notices)
	}
	if s.SuggestionInFlight() || f.bestRuns != 0 {
		t.Error("suggestion requested for a finished game")
	}

	s.Refresh()
	settle(t, s)
	if n := s.TakeNotices(); len(n) != 0 {
		t.Errorf("terminal notice repeated: %+v", n)
	}

	queen := s.Board().PieceAt(sq(t, "g8"))
	if tr := s.Click(sq(t, "g8")); tr.Outcome != Ignored {
		t.Errorf("click on finished board = %v", tr.Outcome)
	}
	err := s.SubmitMove(queen, base.MoveCandidate{From: queen.Position, To: sq(t, "g7")}, nil)
	if !errors.Is(err, ErrGameOver) {
		t.Errorf("SubmitMove = %v, want ErrGameOver", err)
	}
	if len(f.sentMoves()) != 0 {
		t.Error("move sent for a finished game")
	}
	if got := s.Status().TurnText(); got != "CHECKMATE: White Wins" {
		t.Errorf("TurnText = %q", got)
	}
}

func TestNewGameRearmsTerminalNotice(t *testing.T) {
	f := newFakeEngine(whiteWinsDoc())
	f.start = openingDoc()
	s := started(t, f, false)
	s.TakeNotices()

	s.NewGame()
	settle(t, s)
	if f.newGames != 1 || s.Board().Phase != base.InProgress {
		t.Fatalf("new game not loaded: %d, %v", f.newGames, s.Board().Phase)
	}

	f.set(whiteWinsDoc())
	s.Refresh()
	settle(t, s)
	if n := s.TakeNotices(); len(n) != 1 || n[0].Kind != NoticeGameOver {
		t.Errorf("notices after second mate = %+v", n)
	}
}

func TestStaleRefreshDropped(t *testing.T) {
	s := newTestSession(t, newFakeEngine(openingDoc()), false)
	s.issued = 2

	s.applyPosition(2, afterE4Doc(), nil)
	if s.Generation() != 1 || s.Board().ActiveSide != base.Black {
		t.Fatalf("newest position not applied")
	}
	s.applyPosition(1, openingDoc(), nil)
	if s.Generation() != 1 || s.Board().ActiveSide != base.Black {
		t.Error("stale position replaced a newer one")
	}
}

func TestRefreshReadBeforeNewGameDropped(t *testing.T) {
	f := newFakeEngine(whiteWinsDoc())
	f.start = openingDoc()
	s := started(t, f, false)
	s.TakeNotices()
	f.mu.Lock()
	f.held = make(chan chan struct{}, 4)
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	step := func() {
		t.Helper()
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}

	// reads the mated board, answers late
	s.Refresh()
	early := <-f.held

	s.NewGame()
	step() // new game done, refresh of the fresh board issued
	late := <-f.held

	close(early)
	step()
	if s.Generation() != 1 {
		t.Errorf("position read before the new game applied, generation %d", s.Generation())
	}
	if n := s.TakeNotices(); len(n) != 0 {
		t.Errorf("terminal notice repeated: %+v", n)
	}

	close(late)
	settle(t, s)
	if s.Generation() != 2 || s.Board().Phase != base.InProgress {
		t.Errorf("generation %d, phase %v", s.Generation(), s.Board().Phase)
	}
	if n := s.TakeNotices(); len(n) != 0 {
		t.Errorf("notices after new game = %+v", n)
	}
}

func TestRefreshReadBeforeMoveDropped(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.next["12.28.2"] = afterE4Doc()
	s := started(t, f, false)
	f.mu.Lock()
	f.held = make(chan chan struct{}, 4)
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.Refresh()
	early := <-f.held
	s.Click(sq(t, "e2"))
	if tr := s.Click(sq(t, "e4")); tr.Outcome != Submitted {
		t.Fatalf("click e4 = %v", tr.Outcome)
	}
	if err := s.Step(ctx); err != nil {
		t.Fatal(err)
	}
	late := <-f.held

	close(early)
	if err := s.Step(ctx); err != nil {
		t.Fatal(err)
	}
	close(late)
	settle(t, s)
	if s.Generation() != 2 || s.Board().ActiveSide != base.Black {
		t.Errorf("generation %d, active %v", s.Generation(), s.Board().ActiveSide)
	}
}

func TestBadPositionKeepsBoard(t *testing.T) {
	s := started(t, newFakeEngine(openingDoc()), false)
	before := s.Board()

	bad := openingDoc()
	bad.Blacks = append(bad.Blacks, engine.PieceDoc{Pos: 12, Kind: "rook"})
	s.issued++
	s.applyPosition(s.issued, bad, nil)
	s.issued++
	s.applyPosition(s.issued, nil, engine.ErrNoGame)

	if s.Board() != before || s.Generation() != 1 {
		t.Error("board replaced by a failed refresh")
	}
}

func TestSelectionSurvivesUnchangedRefresh(t *testing.T) {
	f := newFakeEngine(openingDoc())
	s := started(t, f, false)

	s.Click(sq(t, "e2"))
	old := s.Selected()
	s.Refresh()
	settle(t, s)

	p := s.Selected()
	if p == nil || p == old || p.Position != old.Position {
		t.Fatalf("selection after refresh = %+v", p)
	}
	if p != s.Board().PieceAt(sq(t, "e2")) {
		t.Error("selection not rebound to the new board")
	}

	f.set(afterE4Doc())
	s.Refresh()
	settle(t, s)
	if s.Selected() != nil {
		t.Error("selection survived a turn change")
	}
}

func TestSuggestionForCurrentGenerationOnly(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.best = make(chan *engine.MoveDoc)
	s := newTestSession(t, f, true)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.Refresh()
	for s.Generation() < 1 {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	// a second position arrives while the first search is still running
	s.Refresh()
	for s.Generation() < 2 {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	for s.d.pending > 1 {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if st := s.SuggestStats(); st.Issued != 2 || st.Cancelled != 1 {
		t.Fatalf("stats = %+v", st)
	}

	f.best <- &engine.MoveDoc{From: 12, To: 28, Kind: 2}
	if err := s.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	sug := s.Suggestion()
	if sug == nil || sug.Generation != 2 || sug.Move.To != sq(t, "e4") {
		t.Fatalf("suggestion = %+v", sug)
	}

	// a result computed for generation 2 landing at generation 3
	tok := newToken(context.Background(), 2)
	s.generation = 3
	s.suggest.complete(tok, &engine.MoveDoc{From: 4, To: 3}, nil)
	if s.Suggestion() != nil {
		t.Error("outdated suggestion displayed")
	}
	if st := s.SuggestStats(); st.Dropped != 1 || st.Accepted != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestSuggestionClearedOnSubmit(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.next["12.28.2"] = afterE4Doc()
	f.best = make(chan *engine.MoveDoc, 1)
	f.best <- &engine.MoveDoc{From: 12, To: 28, Kind: 2}
	s := started(t, f, true)
	if s.Suggestion() == nil {
		t.Fatal("no suggestion for the opening")
	}

	s.Click(sq(t, "e2"))
	s.Click(sq(t, "e4"))
	if s.Suggestion() != nil {
		t.Error("suggestion still shown after submit")
	}

	// the search for the new position never answers; Close releases it
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for s.Generation() < 2 {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if !s.SuggestionInFlight() {
		t.Error("no search started for the new position")
	}
}

func TestSuggestionFailureIsSilent(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.bestErr = errors.New("engine offline")
	s := started(t, f, true)

	if s.Suggestion() != nil {
		t.Error("suggestion shown after failure")
	}
	if n := s.TakeNotices(); len(n) != 0 {
		t.Errorf("failure surfaced as notice: %+v", n)
	}
	if st := s.SuggestStats(); st.Failed != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCloseStopsLoop(t *testing.T) {
	s := newTestSession(t, newFakeEngine(openingDoc()), false)
	s.Close()
	if err := s.Step(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Step after Close = %v", err)
	}
}

func TestSetSuggestions(t *testing.T) {
	f := newFakeEngine(openingDoc())
	f.best = make(chan *engine.MoveDoc, 1)
	f.best <- &engine.MoveDoc{From: 12, To: 28, Kind: 2}
	s := started(t, f, false)
	if f.bestRuns != 0 || s.Suggestion() != nil {
		t.Fatal("search ran with suggestions off")
	}

	s.SetSuggestions(true)
	settle(t, s)
	if s.Suggestion() == nil {
		t.Fatal("no suggestion after enabling")
	}

	s.SetSuggestions(false)
	if s.Suggestion() != nil || s.Suggestions() {
		t.Error("suggestion kept after disabling")
	}
}
