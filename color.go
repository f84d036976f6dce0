package strata

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// RGB returns an opaque color from 0-255 components.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.toNRGBA().RGBA()
}

func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func (c Color) toGG() gg.RGBA {
	return gg.RGBA{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// scaleAlpha returns c with its alpha multiplied by f.
func (c Color) scaleAlpha(f float64) Color {
	c.A *= f
	return c
}

// Lerp blends from c toward to by t in RGB space.
func (c Color) Lerp(to Color, t float64) Color {
	a := colorful.Color{R: c.R, G: c.G, B: c.B}
	b := colorful.Color{R: to.R, G: to.G, B: to.B}
	m := a.BlendRgb(b, t).Clamped()
	return Color{R: m.R, G: m.G, B: m.B, A: c.A + (to.A-c.A)*t}
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa", "rgb(...)", "rgba(...)",
// "hsl(...)", "hsla(...)", "transparent" and CSS color names.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return Color{}, false
	case s == "transparent":
		return ColorTransparent, true
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s)
	case strings.HasPrefix(s, "rgb"):
		return parseFuncColor(s, false)
	case strings.HasPrefix(s, "hsl"):
		return parseFuncColor(s, true)
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}, true
	}
	return Color{}, false
}

// ColorOr parses s, returning fallback when s is not a valid color.
func ColorOr(s string, fallback Color) Color {
	if c, ok := ParseColor(s); ok {
		return c
	}
	Logger().Debug("invalid color, using fallback", "value", s)
	return fallback
}

func parseHexColor(s string) (Color, bool) {
	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, false
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, false
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, true
}

func parseFuncColor(s string, hsl bool) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, false
	}
	parts := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, false
	}
	var v [4]float64
	v[3] = 1
	for i, p := range parts {
		pct := strings.HasSuffix(p, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(p, "%"), "deg"), 64)
		if err != nil {
			return Color{}, false
		}
		switch {
		case i == 3:
			if pct {
				f /= 100
			}
		case hsl && i > 0:
			f /= 100
		case !hsl && pct:
			f /= 100
		case !hsl:
			f /= 255
		}
		v[i] = f
	}
	if hsl {
		c := colorful.Hsl(v[0], clamp01(v[1]), clamp01(v[2])).Clamped()
		return Color{R: c.R, G: c.G, B: c.B, A: clamp01(v[3])}, true
	}
	return Color{R: clamp01(v[0]), G: clamp01(v[1]), B: clamp01(v[2]), A: clamp01(v[3])}, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
