package strata

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation is advanced by the Animator once per tick.
type Animation interface {
	Update(dt float32)
	Finished() bool
	Target() *Node
}

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenFill) and either hand it to an Animator or call Update(dt) yourself.
// The group writes values and marks the node dirty. If the target node is
// disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target
// fields, and marks the node dirty.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
}

// Finished implements Animation.
func (g *TweenGroup) Finished() bool { return g.Done }

// Target implements Animation.
func (g *TweenGroup) Target() *Node { return g.target }

// TweenPosition animates the node's local position.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.Transform.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Transform.Y), float32(toY), duration, fn)
	g.fields[0] = &node.Transform.X
	g.fields[1] = &node.Transform.Y
	return g
}

// TweenScale animates the node's scale factors.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.Transform.ScaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Transform.ScaleY), float32(toSY), duration, fn)
	g.fields[0] = &node.Transform.ScaleX
	g.fields[1] = &node.Transform.ScaleY
	return g
}

// TweenRotation animates the node's rotation in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Transform.Rotation), float32(to), duration, fn)
	g.fields[0] = &node.Transform.Rotation
	return g
}

// TweenFill animates the four components of the fill color.
func TweenFill(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: node}
	c := &node.style.Fill
	g.tweens[0] = gween.New(float32(c.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(c.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(c.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(c.A), float32(to.A), duration, fn)
	g.fields[0] = &c.R
	g.fields[1] = &c.G
	g.fields[2] = &c.B
	g.fields[3] = &c.A
	return g
}

// TweenOpacity animates the style opacity.
func TweenOpacity(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.style.Opacity), float32(to), duration, fn)
	g.fields[0] = &node.style.Opacity
	return g
}

// Property selects the numeric node field a Track drives.
type Property uint8

const (
	PropX Property = iota
	PropY
	PropRotation
	PropScaleX
	PropScaleY
	PropOpacity
	PropLineWidth
)

func (p Property) set(n *Node, v float64) {
	switch p {
	case PropX:
		n.Transform.X = v
	case PropY:
		n.Transform.Y = v
	case PropRotation:
		n.Transform.Rotation = v
	case PropScaleX:
		n.Transform.ScaleX = v
	case PropScaleY:
		n.Transform.ScaleY = v
	case PropOpacity:
		n.style.Opacity = clamp01(v)
	case PropLineWidth:
		n.style.LineWidth = max(0, v)
	}
	n.MarkDirty()
}

// Keyframe is a value at a time in seconds. Ease shapes the segment that
// starts at this key; nil means linear.
type Keyframe struct {
	Time  float32
	Value float64
	Ease  ease.TweenFunc
}

// Track plays keyframes on one property. Before the first key the first
// value holds; after the last key the last value holds, or the track
// restarts when Loop is set.
type Track struct {
	target  *Node
	prop    Property
	keys    []Keyframe
	elapsed float32
	Loop    bool
	done    bool
}

// NewTrack creates a track for target. Keys are sorted by time.
func NewTrack(target *Node, prop Property, keys ...Keyframe) *Track {
	ks := append([]Keyframe(nil), keys...)
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].Time < ks[j].Time })
	return &Track{target: target, prop: prop, keys: ks}
}

// Duration is the time of the last key.
func (t *Track) Duration() float32 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1].Time
}

// ValueAt evaluates the track at time tm.
func (t *Track) ValueAt(tm float32) float64 {
	if len(t.keys) == 0 {
		return 0
	}
	if tm <= t.keys[0].Time {
		return t.keys[0].Value
	}
	last := t.keys[len(t.keys)-1]
	if tm >= last.Time {
		return last.Value
	}
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i].Time > tm }) - 1
	prev, next := t.keys[i], t.keys[i+1]
	span := next.Time - prev.Time
	if span <= 0 {
		return next.Value
	}
	fn := prev.Ease
	if fn == nil {
		fn = ease.Linear
	}
	tw := gween.New(float32(prev.Value), float32(next.Value), span, fn)
	v, _ := tw.Update(tm - prev.Time)
	return float64(v)
}

// Update advances the track and writes the property.
func (t *Track) Update(dt float32) {
	if t.done || len(t.keys) == 0 {
		return
	}
	if t.target == nil || t.target.IsDisposed() {
		t.done = true
		return
	}
	t.elapsed += dt
	d := t.Duration()
	if t.elapsed >= d {
		if t.Loop && d > 0 {
			for t.elapsed >= d {
				t.elapsed -= d
			}
		} else {
			t.elapsed = d
			t.done = true
		}
	}
	t.prop.set(t.target, t.ValueAt(t.elapsed))
}

// Finished implements Animation.
func (t *Track) Finished() bool { return t.done }

// Target implements Animation.
func (t *Track) Target() *Node { return t.target }

// Animator runs animations from the renderer tick.
type Animator struct {
	anims []Animation
}

// Play adds a.
func (a *Animator) Play(anim Animation) {
	if anim != nil {
		a.anims = append(a.anims, anim)
	}
}

// Stop removes every animation driving n.
func (a *Animator) Stop(n *Node) {
	out := a.anims[:0]
	for _, anim := range a.anims {
		if anim.Target() != n {
			out = append(out, anim)
		}
	}
	clear(a.anims[len(out):])
	a.anims = out
}

// Active reports whether any animation is running.
func (a *Animator) Active() bool { return len(a.anims) > 0 }

// Len returns the number of running animations.
func (a *Animator) Len() int { return len(a.anims) }

// Tick advances every animation by dt seconds and drops finished ones
// and those whose target left scene.
func (a *Animator) Tick(dt float32, scene *Scene) {
	out := a.anims[:0]
	for _, anim := range a.anims {
		if n := anim.Target(); n != nil && scene != nil && n.Scene() != scene {
			continue
		}
		anim.Update(dt)
		if !anim.Finished() {
			out = append(out, anim)
		}
	}
	clear(a.anims[len(out):])
	a.anims = out
}
