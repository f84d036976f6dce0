// Package strata is a retained-mode 2D vector scene graph with layered,
// incrementally repainted raster output and pointer interaction.
//
// A scene is a tree of [Node] values. Groups hold ordered children and may
// clip them; primitives carry a [Shape] and a [Style]. Every primitive is
// assigned to a tier (ZTier); each tier paints into its own [Layer], and a
// refresh only repaints layers whose content changed.
//
// # Quick start
//
// The simplest way to get a window is the host package, which runs a
// [Renderer] inside Ebitengine:
//
//	r := strata.New(strata.DefaultConfig())
//	c := strata.NewCircle("dot", 0, 0, 20)
//	c.SetPosition(100, 100)
//	c.Draggable = true
//	r.Add(c)
//	host.Run(r, host.RunConfig{Title: "demo", Width: 640, Height: 480})
//
// Without a window, call [Renderer.Tick] yourself and read pixels from
// [Layer.Image], [Renderer.Composite] or [Renderer.Export].
//
// # Scene graph
//
// Nodes are created detached and attached with [Node.AddChild] or
// [Renderer.Add]. Each node lives in exactly one tree; adding it elsewhere
// detaches it first. Parent and child links are ids resolved through the
// owning [Scene], so a removed subtree simply stops resolving.
//
//	g := strata.NewGroup("ui")
//	g.SetPosition(10, 0)
//	p := strata.NewRect("panel", 0, 0, 200, 100)
//	g.AddChild(p)
//	r.Add(g)
//
// Changing geometry, style or transform marks the node dirty. A dirty group
// repaints every descendant.
//
// # Transforms
//
// Each node has a [TransformState]: position, rotation and scale with
// separate rotation and scale origins. World matrices are composed root to
// leaf at every draw-list rebuild. Non-finite results are rejected and the
// previous matrix kept.
//
// # Draw order and layers
//
// The draw list is sorted by ZTier, then ZOrder, then tree order. Tiers map
// to layers created on demand. [LayerOptions] configures a clear color,
// motion blur, and pan/zoom behavior.
//
// # Interaction
//
// The [PointerController] hit-tests the draw list from the top down.
// Closed shapes use closed-form tests or non-zero winding; open shapes use
// stroke distance with a minimum hit width. Events bubble from the target
// through its ancestors and then reach [Renderer.Events] unless a handler
// calls [Event.StopPropagation].
//
//	p.Clickable = true
//	p.Events.On(strata.EventClick, func(e *strata.Event) {
//		log.Println("clicked", e.Target.Name)
//	})
//
// Draggable primitives follow the pointer once it moves past
// Config.DragThreshold, are highlighted while dragged, and deliver
// dragenter, dragover, dragleave and drop to the primitive underneath.
//
// # Animation
//
// [TweenGroup] and [Track] animate node properties with gween easing
// functions. Hand them to [Renderer.Play]; they advance on every tick.
//
// # Configuration and logging
//
// [LoadConfig] reads STRATA_* environment variables. Paint errors are
// collected, returned or logged depending on Config.DebugLevel. Logging
// goes through log/slog; install a logger with [SetLogger].
package strata
