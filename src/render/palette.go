package render

import "image/color"

// ---- Styles (palettes) ----

// Translucent overlays are non-premultiplied so the listed channels are the
// hue at full strength.
type Palette struct {
	Bg          color.RGBA
	LightSquare color.RGBA
	DarkSquare  color.RGBA
	Selected    color.RGBA
	Destination color.NRGBA
	Capture     color.NRGBA
	Arrow       color.NRGBA
	Text        color.RGBA
	WhitePiece  color.RGBA
	BlackPiece  color.RGBA
}

var LightPalette = Palette{
	Bg:          color.RGBA{0xf7, 0xf7, 0xf7, 0xff},
	LightSquare: color.RGBA{0xee, 0xee, 0xd2, 0xff},
	DarkSquare:  color.RGBA{0x76, 0x96, 0x56, 0xff},
	Selected:    color.RGBA{0xf6, 0xf6, 0x69, 0xff},
	Destination: color.NRGBA{0x22, 0x88, 0xcc, 0x99},
	Capture:     color.NRGBA{0xd6, 0x3b, 0x3b, 0xaa},
	Arrow:       color.NRGBA{0xff, 0x8c, 0x00, 0xcc},
	Text:        color.RGBA{0x22, 0x22, 0x22, 0xff},
	WhitePiece:  color.RGBA{0xff, 0xff, 0xff, 0xff},
	BlackPiece:  color.RGBA{0x22, 0x22, 0x22, 0xff},
}

var DarkPalette = Palette{
	Bg:          color.RGBA{0x12, 0x12, 0x12, 0xff},
	LightSquare: color.RGBA{0x8c, 0x8f, 0xbc, 0xff},
	DarkSquare:  color.RGBA{0x3b, 0x3e, 0x6b, 0xff},
	Selected:    color.RGBA{0xd4, 0xb1, 0x3f, 0xff},
	Destination: color.NRGBA{0x2a, 0xa1, 0xd1, 0x99},
	Capture:     color.NRGBA{0xe0, 0x4f, 0x4f, 0xaa},
	Arrow:       color.NRGBA{0xff, 0xa5, 0x30, 0xcc},
	Text:        color.RGBA{0xee, 0xee, 0xee, 0xff},
	WhitePiece:  color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
	BlackPiece:  color.RGBA{0x10, 0x10, 0x10, 0xff},
}

func (p Palette) String() string {
	switch p {
	case LightPalette:
		return "light"
	case DarkPalette:
		return "dark"
	default:
	}
	return ""
}

// PaletteFromString falls back to the light palette.
func PaletteFromString(p string) Palette {
	switch p {
	case "dark":
		return DarkPalette
	default:
	}
	return LightPalette
}
