package strata

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageGeometry(t *testing.T) {
	tests := []struct {
		name    string
		args    []float64
		want    Rect
		crop    bool
		wantErr bool
	}{
		{"none", nil, Rect{}, false, false},
		{"position", []float64{3, 4}, Rect{X: 3, Y: 4}, false, false},
		{"box", []float64{1, 2, 30, 40}, Rect{X: 1, Y: 2, Width: 30, Height: 40}, false, false},
		{"crop", []float64{0, 0, 8, 8, 5, 6, 16, 16}, Rect{X: 5, Y: 6, Width: 16, Height: 16}, true, false},
		{"three", []float64{1, 2, 3}, Rect{}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewImage("img", "src", tt.args...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			s := n.Shape().(*ImageShape)
			if got := s.bounds(); got != tt.want {
				t.Errorf("bounds = %+v, want %+v", got, tt.want)
			}
			if (s.crop != nil) != tt.crop {
				t.Errorf("crop set = %v, want %v", s.crop != nil, tt.crop)
			}
		})
	}
}

func TestImageLoadsAndPaints(t *testing.T) {
	var calls atomic.Int32
	r := New(testConfig())
	r.SetImageLoader(func(src string) (image.Image, error) {
		calls.Add(1)
		return solidImage(4, 4, color.NRGBA{255, 0, 0, 255}), nil
	})
	a, _ := NewImage("a", "red.png", 0, 0, 8, 8)
	b, _ := NewImage("b", "red.png", 20, 20, 8, 8)
	r.Add(a)
	r.Add(b)

	if err := r.Tick(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	r.Images.Wait()
	_ = r.Tick(1.0 / 60) // delivers the pixels
	_ = r.Tick(1.0 / 60) // repaints

	if calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", calls.Load())
	}
	img := r.Layer(0).Image()
	assertPixel(t, img, 4, 4, red)
	assertPixel(t, img, 24, 24, red)
	if _, ok := r.Images.Get("red.png"); !ok {
		t.Error("image not cached")
	}

	c, _ := NewImage("c", "red.png")
	r.Images.Request(c)
	if c.image == nil {
		t.Error("cached image not attached immediately")
	}
}

func TestImageLoadForRemovedNodeIgnored(t *testing.T) {
	r := New(testConfig())
	r.SetImageLoader(func(string) (image.Image, error) {
		return solidImage(2, 2, color.White), nil
	})
	n, _ := NewImage("n", "late.png", 0, 0, 8, 8)
	r.Add(n)
	_ = r.Refresh()
	r.Remove(n.ID())
	r.Images.Wait()
	if r.Images.drain(r.Scene) {
		t.Error("drain reported a repaint for a removed node")
	}
	if n.image != nil {
		t.Error("removed node received pixels")
	}
	if _, ok := r.Images.Get("late.png"); !ok {
		t.Error("image should still be cached")
	}
}

func TestImageLoadFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	errBroken := errors.New("broken")
	c := NewImageCache(func(string) (image.Image, error) {
		calls.Add(1)
		return nil, errBroken
	})
	s := NewScene()
	n, _ := NewImage("n", "bad.png")
	s.AddRoot(n)

	c.Request(n)
	c.Wait()
	c.drain(s)
	if !errors.Is(c.Err("bad.png"), errBroken) {
		t.Errorf("Err = %v, want %v", c.Err("bad.png"), errBroken)
	}
	c.Request(n)
	c.Wait()
	if calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", calls.Load())
	}
}

func TestImageRequestWithoutLoader(t *testing.T) {
	c := NewImageCache(nil)
	s := NewScene()
	n, _ := NewImage("n", "x.png")
	s.AddRoot(n)
	c.Request(n)

	var calls atomic.Int32
	c.SetLoader(func(string) (image.Image, error) {
		calls.Add(1)
		return solidImage(1, 1, color.Black), nil
	})
	c.requestMissing([]*Node{n})
	c.Wait()
	if !c.drain(s) || n.image == nil {
		t.Error("load did not start once a loader was set")
	}
	if calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", calls.Load())
	}
}

func TestImageWaitWithManyPendingLoads(t *testing.T) {
	c := NewImageCache(func(string) (image.Image, error) {
		return solidImage(1, 1, color.White), nil
	})
	s := NewScene()
	nodes := make([]*Node, 100)
	for i := range nodes {
		n, err := NewImage(fmt.Sprintf("n%d", i), fmt.Sprintf("img%d.png", i))
		if err != nil {
			t.Fatal(err)
		}
		s.AddRoot(n)
		c.Request(n)
		nodes[i] = n
	}

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked with 100 pending loads")
	}

	if !c.drain(s) {
		t.Fatal("drain attached nothing")
	}
	for _, n := range nodes {
		if n.image == nil {
			t.Errorf("%s has no image", n.Name)
		}
	}
}
