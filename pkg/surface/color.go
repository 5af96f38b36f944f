package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	colorBackdrop = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorText     = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	colorSubtle   = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	colorBorder   = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	// Markers whose category has no colour are painted with this.
	colorNoFill = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
)

// parseHex reads #rgb or #rrggbb.
func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	if c, ok := parseHex(s); ok {
		return c
	}
	return fallback
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func withAlpha(c color.RGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(opacity*255 + 0.5)}
}
