// Package host runs a strata.Renderer inside an Ebitengine window. It
// polls mouse, wheel and touch input into the renderer's pointer
// controller, ticks the renderer once per update and blits the layer
// surfaces to the screen.
package host

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/strata"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Background strata.Color
	ShowFPS    bool
}

// Game adapts a renderer to ebiten.Game.
type Game struct {
	r   *strata.Renderer
	cfg RunConfig

	surfaces map[int]*ebiten.Image
	update   func() error

	inside       bool
	pressed      bool
	button       strata.MouseButton
	lastX, lastY int

	touchID  ebiten.TouchID
	touching bool
	touchBuf []ebiten.TouchID
}

// NewGame wraps r. The renderer is resized to the window on the first
// layout.
func NewGame(r *strata.Renderer, cfg RunConfig) *Game {
	return &Game{r: r, cfg: cfg, surfaces: make(map[int]*ebiten.Image)}
}

// SetUpdateFunc registers fn to run every update before the renderer ticks.
func (g *Game) SetUpdateFunc(fn func() error) { g.update = fn }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	mods := readModifiers()
	if !g.processTouch(mods) {
		g.processMouse(mods)
	}
	if g.update != nil {
		if err := g.update(); err != nil {
			return err
		}
	}
	return g.r.Tick(float32(1.0 / float64(ebiten.TPS())))
}

func (g *Game) processMouse(mods strata.KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	w, h := g.r.Compositor.Size()
	inside := mx >= 0 && my >= 0 && mx < w && my < h
	e := strata.PointerEvent{X: float64(mx), Y: float64(my), Modifiers: mods}
	p := g.r.Pointer

	if !inside {
		if g.inside {
			p.PointerLeave(e)
		}
		g.inside = false
		g.pressed = false
		return
	}
	g.inside = true

	var pressed bool
	var button strata.MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = strata.MouseButtonLeft
		case right:
			button = strata.MouseButtonRight
		default:
			button = strata.MouseButtonMiddle
		}
	}

	if mx != g.lastX || my != g.lastY {
		e.Button = g.button
		p.PointerMove(e)
		g.lastX, g.lastY = mx, my
	}
	switch {
	case pressed && !g.pressed:
		g.button = button
		e.Button = button
		p.PointerDown(e)
	case !pressed && g.pressed:
		e.Button = g.button
		p.PointerUp(e)
	}
	g.pressed = pressed

	if _, wy := ebiten.Wheel(); wy != 0 {
		e.WheelY = wy
		p.PointerWheel(e)
	}
}

// processTouch drives the pointer from the first active touch. It reports
// whether a touch owned the pointer this update.
func (g *Game) processTouch(mods strata.KeyModifiers) bool {
	g.touchBuf = ebiten.AppendTouchIDs(g.touchBuf[:0])
	p := g.r.Pointer
	if g.touching {
		for _, id := range g.touchBuf {
			if id == g.touchID {
				tx, ty := ebiten.TouchPosition(id)
				if tx != g.lastX || ty != g.lastY {
					p.PointerMove(strata.PointerEvent{X: float64(tx), Y: float64(ty), Modifiers: mods})
					g.lastX, g.lastY = tx, ty
				}
				return true
			}
		}
		p.PointerUp(strata.PointerEvent{X: float64(g.lastX), Y: float64(g.lastY), Modifiers: mods})
		g.touching = false
		return true
	}
	if len(g.touchBuf) == 0 {
		return false
	}
	g.touchID = g.touchBuf[0]
	g.touching = true
	tx, ty := ebiten.TouchPosition(g.touchID)
	g.lastX, g.lastY = tx, ty
	p.PointerDown(strata.PointerEvent{X: float64(tx), Y: float64(ty), Modifiers: mods})
	return true
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.Background.A > 0 {
		screen.Fill(g.cfg.Background)
	}
	dpr := g.r.Compositor.DevicePixelRatio()
	for _, l := range g.r.Compositor.Layers() {
		rgba := toRGBA(l.Image())
		b := rgba.Bounds()
		surf := g.surfaces[l.Tier]
		if surf == nil || surf.Bounds().Dx() != b.Dx() || surf.Bounds().Dy() != b.Dy() {
			if surf != nil {
				surf.Deallocate()
			}
			surf = ebiten.NewImage(b.Dx(), b.Dy())
			g.surfaces[l.Tier] = surf
		}
		surf.WritePixels(rgba.Pix)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(1/dpr, 1/dpr)
		screen.DrawImage(surf, op)
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game. A window resize resizes the renderer.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.r.Compositor.Size()
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != w || outsideHeight != h) {
		if err := g.r.Resize(outsideWidth, outsideHeight, 0); err != nil {
			strata.Logger().Error("host: resize", "error", err)
		}
	}
	return g.r.Compositor.Size()
}

// Run opens a window and runs r until the window closes.
func Run(r *strata.Renderer, cfg RunConfig) error {
	return RunGame(NewGame(r, cfg))
}

// RunGame runs a prepared Game, sizing the window from its RunConfig.
func RunGame(g *Game) error {
	cfg := g.cfg
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = g.r.Compositor.Size()
	}
	if cfg.Title == "" {
		cfg.Title = "strata"
	}
	if err := g.r.Resize(cfg.Width, cfg.Height, 0); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	g.cfg = cfg
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func readModifiers() strata.KeyModifiers {
	var mods strata.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= strata.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= strata.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= strata.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= strata.ModMeta
	}
	return mods
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}
