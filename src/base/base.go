package base

import "fmt"

type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	switch s {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "invalid"
	}
}

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

type Role uint8

const (
	Pawn Role = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var roleNames = [...]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "invalid"
}

// ParseRole accepts the lowercase role names used on the wire.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown piece kind %q", name)
}

// Roles lists every role, handy for asset loading.
func Roles() []Role {
	return []Role{Pawn, Knight, Bishop, Rook, Queen, King}
}

// MoveKind is the move tag the rule engine attaches to every candidate.
// The numeric values are part of the wire contract.
type MoveKind uint8

const (
	Regular MoveKind = iota
	Capture
	DoubleJump
	EnPassant
	PromoteQueen
	PromoteKnight
	PromoteRook
	PromoteBishop
	QueensideCastle
	KingsideCastle
)

func (k MoveKind) Valid() bool {
	return k <= KingsideCastle
}

func (k MoveKind) IsPromotion() bool {
	return k >= PromoteQueen && k <= PromoteBishop
}

func (k MoveKind) String() string {
	switch k {
	case Regular:
		return "regular"
	case Capture:
		return "capture"
	case DoubleJump:
		return "double-jump"
	case EnPassant:
		return "en-passant"
	case PromoteQueen:
		return "promote-queen"
	case PromoteKnight:
		return "promote-knight"
	case PromoteRook:
		return "promote-rook"
	case PromoteBishop:
		return "promote-bishop"
	case QueensideCastle:
		return "queenside-castle"
	case KingsideCastle:
		return "kingside-castle"
	default:
		return "invalid"
	}
}

type Phase uint8

const (
	InProgress Phase = iota
	WhiteWins
	BlackWins
	Stalemate
)

func (p Phase) Terminal() bool {
	return p != InProgress
}

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in progress"
	case WhiteWins:
		return "checkmate: white wins"
	case BlackWins:
		return "checkmate: black wins"
	case Stalemate:
		return "stalemate"
	default:
		return "invalid"
	}
}

// PhaseFromState maps the engine's numeric state to the side to move and
// the phase. 0 and 1 are in-progress states, 2 and 3 are checkmates and
// every other value is a drawn game. After a mate the side to move is the
// mated one; a drawn state does not say, so it reports White.
func PhaseFromState(state int) (Side, Phase) {
	switch state {
	case 0:
		return White, InProgress
	case 1:
		return Black, InProgress
	case 2:
		return Black, WhiteWins
	case 3:
		return White, BlackWins
	default:
		return White, Stalemate
	}
}
