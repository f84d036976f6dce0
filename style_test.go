package strata

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestStyleMergeNil(t *testing.T) {
	s := DefaultStyle()
	got := s.Merge(nil)
	if got.Fill != s.Fill || got.LineWidth != s.LineWidth || got.Brush != s.Brush {
		t.Errorf("Merge(nil) changed the style: %+v", got)
	}
}

func TestStyleMergeSparse(t *testing.T) {
	s := DefaultStyle()
	s.Stroke = ColorWhite
	red := Color{1, 0, 0, 1}
	got := s.Merge(Highlight().WithFill(red).WithLineWidth(4).WithBrush(BrushBoth))
	if got.Fill != red {
		t.Errorf("Fill = %+v, want red", got.Fill)
	}
	if got.LineWidth != 4 || got.Brush != BrushBoth {
		t.Errorf("LineWidth = %v, Brush = %v", got.LineWidth, got.Brush)
	}
	if got.Stroke != ColorWhite {
		t.Error("unset override field replaced Stroke")
	}
	if s.Fill != ColorBlack {
		t.Error("Merge mutated the receiver")
	}
}

func TestStyleNormalized(t *testing.T) {
	s := Style{LineWidth: -3, Opacity: 4, Brush: BrushType(99), TextPosition: TextPosition(99)}.normalized()
	if s.LineWidth != 1 {
		t.Errorf("LineWidth = %v, want 1", s.LineWidth)
	}
	if s.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", s.Opacity)
	}
	if s.Brush != BrushFill || s.TextPosition != TextTop {
		t.Errorf("Brush = %v, TextPosition = %v", s.Brush, s.TextPosition)
	}
	if s.FontSize != 12 {
		t.Errorf("FontSize = %v, want 12", s.FontSize)
	}
}

func checker() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})
	return img
}

func TestNewPatternInvalid(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		rep  string
	}{
		{"nil image", nil, "repeat"},
		{"empty image", image.NewNRGBA(image.Rectangle{}), "repeat"},
		{"bad repetition", checker(), "mirror"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPattern(tt.img, tt.rep)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestPatternColorAt(t *testing.T) {
	tests := []struct {
		rep       string
		x, y      float64
		wantR     float64
		wantAlpha float64
	}{
		{"repeat", 0.5, 0.5, 1, 1},
		{"repeat", 2.5, 2.5, 1, 1},
		{"repeat", -0.5, 0.5, 0, 1}, // wraps to column 1: green
		{"repeat-x", 2.5, 0.5, 1, 1},
		{"repeat-x", 0.5, 2.5, 0, 0},
		{"repeat-y", 0.5, 2.5, 1, 1},
		{"repeat-y", 2.5, 0.5, 0, 0},
		{"no-repeat", 1.5, 1.5, 1, 1},
		{"no-repeat", 3, 0, 0, 0},
	}
	for _, tt := range tests {
		p, err := NewPattern(checker(), tt.rep)
		if err != nil {
			t.Fatal(err)
		}
		c := p.ColorAt(tt.x, tt.y)
		if c.R != tt.wantR || c.A != tt.wantAlpha {
			t.Errorf("%s ColorAt(%v, %v) = %+v, want R %v A %v", tt.rep, tt.x, tt.y, c, tt.wantR, tt.wantAlpha)
		}
	}
}
