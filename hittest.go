package strata

// hitTester finds the topmost interactive primitive under a surface point.
type hitTester struct {
	minHit      float64
	ignoreClips bool
	// layerToLocal maps a surface point into a tier's layer space. Nil
	// means every layer is untransformed.
	layerToLocal func(tier int, x, y float64) (float64, float64)
}

// findTopmost walks list from the top of the paint order down and returns
// the first primitive containing (x, y). exclude is skipped, as are silent
// primitives. A primitive only hits inside every clip of its chain.
func (h *hitTester) findTopmost(x, y float64, list []*Node, exclude *Node) *Node {
	for i := len(list) - 1; i >= 0; i-- {
		n := list[i]
		if n == exclude || n.IsSilent() || n.disposed {
			continue
		}
		wx, wy := x, y
		if h.layerToLocal != nil {
			wx, wy = h.layerToLocal(n.ZTier, x, y)
		}
		if h.hits(n, wx, wy) {
			return n
		}
	}
	return nil
}

// hits tests the world point (wx, wy) against n and its clip chain.
func (h *hitTester) hits(n *Node, wx, wy float64) bool {
	lx, ly, ok := n.Transform.ToLocal(wx, wy)
	if !ok || !n.ContainsPoint(lx, ly, h.minHit) {
		return false
	}
	if h.ignoreClips {
		return true
	}
	for _, clip := range n.clipChain {
		cx, cy, ok := clip.Transform.ToLocal(wx, wy)
		if !ok || !clip.fillContains(cx, cy) {
			return false
		}
	}
	return true
}

// FindTopmost returns the topmost non-silent primitive at the world point
// (x, y) in the last draw list, ignoring layer pan and zoom.
func (s *Scene) FindTopmost(x, y float64) *Node {
	h := hitTester{minHit: DefaultMinHitWidth}
	return h.findTopmost(x, y, s.drawList, nil)
}
