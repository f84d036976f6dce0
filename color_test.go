package strata

import (
	"math"
	"testing"
)

func assertColor(t *testing.T, name string, got, want Color) {
	t.Helper()
	const tol = 1.0 / 255
	if math.Abs(got.R-want.R) > tol || math.Abs(got.G-want.G) > tol ||
		math.Abs(got.B-want.B) > tol || math.Abs(got.A-want.A) > tol {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#f00", Color{1, 0, 0, 1}},
		{"#00ff00", Color{0, 1, 0, 1}},
		{"#0000ff80", Color{0, 0, 1, 128.0 / 255}},
		{"  #FFFFFF ", ColorWhite},
		{"rgb(255, 0, 0)", Color{1, 0, 0, 1}},
		{"rgba(0,0,255,0.5)", Color{0, 0, 1, 0.5}},
		{"rgb(100%, 50%, 0%)", Color{1, 0.5, 0, 1}},
		{"rgb(0 0 0 / 25%)", Color{0, 0, 0, 0.25}},
		{"hsl(120, 100%, 50%)", Color{0, 1, 0, 1}},
		{"hsla(0deg, 100%, 50%, 0.5)", Color{1, 0, 0, 0.5}},
		{"red", Color{1, 0, 0, 1}},
		{"Black", ColorBlack},
		{"transparent", ColorTransparent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if !ok {
				t.Fatalf("ParseColor(%q) failed", tt.in)
			}
			assertColor(t, tt.in, got, tt.want)
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#zzz", "#ff", "rgb(1,2)", "rgb(a,b,c)", "rgb(1,2,3", "hsl()", "notacolor"} {
		if c, ok := ParseColor(in); ok {
			t.Errorf("ParseColor(%q) = %+v, want failure", in, c)
		}
	}
}

func TestColorOr(t *testing.T) {
	fallback := Color{0.1, 0.2, 0.3, 1}
	if got := ColorOr("bogus", fallback); got != fallback {
		t.Errorf("ColorOr(bogus) = %+v, want fallback", got)
	}
	assertColor(t, "ColorOr(blue)", ColorOr("blue", fallback), Color{0, 0, 1, 1})
}

func TestColorLerp(t *testing.T) {
	from := Color{0, 0, 0, 0}
	to := ColorWhite
	assertColor(t, "t=0", from.Lerp(to, 0), from)
	assertColor(t, "t=1", from.Lerp(to, 1), to)
	assertColor(t, "t=0.5", from.Lerp(to, 0.5), Color{0.5, 0.5, 0.5, 0.5})
}

func TestColorNRGBAClamps(t *testing.T) {
	c := Color{R: 2, G: -1, B: 0.5, A: 1}.toNRGBA()
	if c.R != 255 || c.G != 0 || c.B != 128 || c.A != 255 {
		t.Errorf("toNRGBA = %+v", c)
	}
}
