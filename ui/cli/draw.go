package cli

import (
	"fmt"
	"io"

	"chessview/src/base"
	"chessview/src/render"
)

// ANSI-code
const (
	reset    = "\033[0m"
	lightBg  = "\033[47m"
	darkBg   = "\033[100m"
	selectBg = "\033[43m"
	destBg   = "\033[46m"
	captBg   = "\033[41m"
	hintBg   = "\033[45m"
	whiteF   = "\033[97m"
	blackF   = "\033[30m"
	dimF     = "\033[90m"
)

var glyphs = [2][6]string{
	base.White: {"♙", "♘", "♗", "♖", "♕", "♔"},
	base.Black: {"♟", "♞", "♝", "♜", "♛", "♚"},
}

type mark int

const (
	markNone mark = iota
	markHint
	markDest
	markCapture
	markSelected
)

// marks collects highlights with the same precedence the renderer uses.
func marks(f render.Frame) map[base.Square]mark {
	m := map[base.Square]mark{}
	if s := f.Suggestion; s != nil && s.Generation == f.Generation {
		m[s.Move.From] = markHint
		m[s.Move.To] = markHint
	}
	if p := f.Selected; p != nil {
		for _, mv := range p.LegalMoves {
			if mv.To == p.Position {
				continue
			}
			if render.IsCapture(f.Board, p, mv) {
				m[mv.To] = markCapture
			} else {
				m[mv.To] = markDest
			}
		}
		m[p.Position] = markSelected
	}
	return m
}

// PrintBoard writes the frame as text. Without colour the highlights are
// drawn as brackets around the cell.
func PrintBoard(w io.Writer, f render.Frame, color bool) {
	files := "   a  b  c  d  e  f  g  h"
	if f.Layout.Flipped {
		files = "   h  g  f  e  d  c  b  a"
	}
	m := marks(f)

	fmt.Fprintln(w)
	fmt.Fprintln(w, files)
	for row := 0; row < 8; row++ {
		rank := row
		if f.Layout.Flipped {
			rank = 7 - row
		}
		fmt.Fprintf(w, "%d ", 8-rank)
		for col := 0; col < 8; col++ {
			file := col
			if f.Layout.Flipped {
				file = 7 - col
			}
			sq := base.Square{File: file, Rank: rank}
			fmt.Fprint(w, cell(f.Board.PieceAt(sq), sq, m[sq], color))
		}
		fmt.Fprintf(w, " %d\n", 8-rank)
	}
	fmt.Fprintln(w, files)
	fmt.Fprintln(w)
}

func cell(p *base.Piece, sq base.Square, mk mark, color bool) string {
	g := " "
	if !color {
		g = "."
	}
	if p != nil {
		g = glyphs[p.Side][p.Role]
	}
	if !color {
		switch mk {
		case markSelected:
			return "[" + g + "]"
		case markDest, markCapture:
			return "<" + g + ">"
		case markHint:
			return "{" + g + "}"
		}
		return " " + g + " "
	}

	var bg string
	switch mk {
	case markSelected:
		bg = selectBg
	case markCapture:
		bg = captBg
	case markDest:
		bg = destBg
	case markHint:
		bg = hintBg
	default:
		bg = darkBg
		if (sq.File+sq.Rank)%2 == 0 {
			bg = lightBg
		}
	}
	fg := dimF
	if p != nil {
		fg = blackF
		if p.Side == base.White && bg == darkBg {
			fg = whiteF
		}
	}
	return bg + fg + " " + g + " " + reset
}
