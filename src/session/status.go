package session

import (
	"fmt"
	"strings"

	"chessview/src/base"
)

type NoticeKind int

const (
	NoticeGameOver NoticeKind = iota
	NoticeMoveRejected
	NoticeEngineError
)

type Notice struct {
	Kind NoticeKind
	Text string
}

// Terminal notices are modal; the rest are transient.
func (n Notice) Modal() bool { return n.Kind == NoticeGameOver }

func gameOverNotice(p base.Phase) Notice {
	var text string
	switch p {
	case base.WhiteWins:
		text = "CHECKMATE: White Wins"
	case base.BlackWins:
		text = "CHECKMATE: Black Wins"
	default:
		text = "STALEMATE: You Drew"
	}
	return Notice{Kind: NoticeGameOver, Text: text}
}

// Status is the text panel next to the board.
type Status struct {
	Ready      bool
	ActiveSide base.Side
	Phase      base.Phase
	LegalMoves int
	Halfmoves  int
	Fullmoves  int
	Scores     [2]float64
	Advantages [2]float64
	Generation uint64
}

func (s *Session) Status() Status {
	b := s.board
	if b == nil {
		return Status{}
	}
	return Status{
		Ready:      true,
		ActiveSide: b.ActiveSide,
		Phase:      b.Phase,
		LegalMoves: b.LegalMoveCount(),
		Halfmoves:  b.Halfmoves,
		Fullmoves:  b.Fullmoves,
		Scores:     b.Scores,
		Advantages: b.Advantages,
		Generation: s.generation,
	}
}

func (st Status) TurnText() string {
	if !st.Ready {
		return "Waiting for engine"
	}
	if st.Phase.Terminal() {
		return gameOverNotice(st.Phase).Text
	}
	side := st.ActiveSide.String()
	return strings.ToUpper(side[:1]) + side[1:] + " to move"
}

func (st Status) Lines() []string {
	if !st.Ready {
		return []string{st.TurnText()}
	}
	return []string{
		st.TurnText(),
		fmt.Sprintf("There are %d moves that can be made", st.LegalMoves),
		fmt.Sprintf("halfmoves: %d", st.Halfmoves),
		fmt.Sprintf("fullmoves: %d", st.Fullmoves),
		fmt.Sprintf("white evaluation: %.2f", st.Scores[base.White]),
		fmt.Sprintf("black evaluation: %.2f", st.Scores[base.Black]),
		fmt.Sprintf("white advantage: %.2f", st.Advantages[base.White]),
		fmt.Sprintf("black advantage: %.2f", st.Advantages[base.Black]),
	}
}
