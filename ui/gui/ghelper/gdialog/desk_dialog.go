package gdialog

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"
)

// ErrCancelled is returned when the user closes the dialog.
var ErrCancelled = dialog.ErrCancelled

// SavePNG asks for a target file and appends .png when missing.
func SavePNG(title, suggested string) (string, error) {
	path, err := dialog.File().Title(title).Filter("PNG image", "png").SetStartFile(suggested).Save()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", ErrCancelled
		}
		return "", err
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		path += ".png"
	}
	return path, nil
}
