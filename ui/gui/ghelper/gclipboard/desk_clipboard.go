package gclipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no system clipboard available")

// CopyLines puts the lines on the system clipboard, one per row.
func CopyLines(lines []string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(strings.Join(lines, "\n"))
}
