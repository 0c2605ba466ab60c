package engine

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMoveRejected = errors.New("move rejected by rule engine")
	ErrNoGame       = errors.New("no active game")
	ErrBadDocument  = errors.New("malformed engine document")
)

const (
	RequestTimeout = 5 * time.Second  // new game, position, move
	SuggestTimeout = 30 * time.Second // best move search
)

// RuleEngine is the remote authority that owns the rules. The client never
// derives legality itself; it only forwards requests through this boundary.
type RuleEngine interface {
	NewGame(ctx context.Context) error
	Position(ctx context.Context) (*PositionDoc, error)
	// Move applies a "<from>.<to>.<kind>" payload; ErrMoveRejected when the
	// engine declines it.
	Move(ctx context.Context, payload string) error
	// BestMove must honour ctx cancellation mid-flight.
	BestMove(ctx context.Context) (*MoveDoc, error)
}

// Event is pushed by engines that announce position changes.
type Event struct {
	Type    string `json:"type"`
	Game    string `json:"game"`
	Version uint64 `json:"version"`
}

const EventPosition = "position"

// Watcher is implemented by engines that can push position changes.
// Watch blocks until ctx is done or the stream fails.
type Watcher interface {
	Watch(ctx context.Context, fn func(Event)) error
}

type MoveDoc struct {
	From int `json:"from"`
	To   int `json:"to"`
	Kind int `json:"kind"`
}

type PieceDoc struct {
	Pos     int       `json:"pos"`
	Kind    string    `json:"kind"`
	Attacks []MoveDoc `json:"attacks"`
}

// PositionDoc is the full-position document returned by the engine.
type PositionDoc struct {
	State          int        `json:"state"`
	HalfmoveCount  int        `json:"halfmove_count"`
	FullmoveCount  int        `json:"fullmove_count"`
	Whites         []PieceDoc `json:"whites"`
	Blacks         []PieceDoc `json:"blacks"`
	WhiteScore     float64    `json:"white_score"`
	BlackScore     float64    `json:"black_score"`
	WhiteAdvantage float64    `json:"white_advantage"`
	BlackAdvantage float64    `json:"black_advantage"`
	Occupancy      []int      `json:"occupancy,omitempty"` // 8 bitboard rows, first rank first
}
