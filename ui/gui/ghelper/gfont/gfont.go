package gfont

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type Fonts struct {
	Small  font.Face
	Normal font.Face
	Bold   font.Face
}

// LoadFonts builds faces from the embedded Go fonts; on failure every face
// falls back to basicfont.
func LoadFonts() (*Fonts, error) {
	fallback := &Fonts{Small: basicfont.Face7x13, Normal: basicfont.Face7x13, Bold: basicfont.Face7x13}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fallback, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fallback, err
	}
	face := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	fonts := &Fonts{}
	if fonts.Small, err = face(regular, 12); err != nil {
		return fallback, err
	}
	if fonts.Normal, err = face(regular, 15); err != nil {
		return fallback, err
	}
	if fonts.Bold, err = face(bold, 18); err != nil {
		return fallback, err
	}
	return fonts, nil
}
