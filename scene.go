package strata

// Scene is the store of a node tree: the ordered roots, an id index of
// every attached node, the derived draw list and the highlight set.
type Scene struct {
	arena    *arena
	roots    []NodeID
	drawList []*Node
	sortBuf  []*Node

	highlight []NodeID
	changed   bool
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	s := &Scene{arena: newArena()}
	s.arena.scene = s
	return s
}

// AddRoot appends n to the roots and indexes its subtree. A node attached
// to a different scene is left untouched; a node already in this scene is
// re-parented to the root list.
func (s *Scene) AddRoot(n *Node) {
	if n == nil || n.disposed {
		return
	}
	if other := n.Scene(); other != nil && other != s {
		return
	}
	if n.Scene() == s && n.parent == "" && s.isRoot(n.id) {
		return
	}
	n.detach()
	if n.arena != s.arena {
		moveSubtree(n, s.arena)
	}
	s.roots = append(s.roots, n.id)
	n.markSubtreeDirty()
}

// RemoveRoot removes a root and drops its subtree from the index. Ids that
// are not roots are ignored.
func (s *Scene) RemoveRoot(id NodeID) {
	if !s.isRoot(id) {
		return
	}
	s.Remove(id)
}

// Remove detaches the node with the given id, wherever it sits in the tree.
// Unknown ids are ignored.
func (s *Scene) Remove(id NodeID) {
	n := s.arena.nodes[id]
	if n == nil {
		return
	}
	n.RemoveFromParent()
}

// Node looks up an attached node by id.
func (s *Scene) Node(id NodeID) *Node {
	return s.arena.nodes[id]
}

// Len returns the number of indexed nodes.
func (s *Scene) Len() int { return len(s.arena.nodes) }

// Roots returns the top-level nodes in order.
func (s *Scene) Roots() []*Node {
	out := make([]*Node, 0, len(s.roots))
	for _, id := range s.roots {
		if n := s.arena.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// MarkDirty flags the node for repaint. Unknown ids are ignored.
func (s *Scene) MarkDirty(id NodeID) {
	if n := s.arena.nodes[id]; n != nil {
		n.MarkDirty()
	}
}

// Changed reports whether anything was marked dirty, added or removed
// since the last draw-list rebuild.
func (s *Scene) Changed() bool { return s.changed }

// DrawList returns the draw list from the last rebuild.
func (s *Scene) DrawList() []*Node { return s.drawList }

func (s *Scene) isRoot(id NodeID) bool {
	for _, r := range s.roots {
		if r == id {
			return true
		}
	}
	return false
}

func (s *Scene) removeRootID(id NodeID) {
	for i, r := range s.roots {
		if r == id {
			copy(s.roots[i:], s.roots[i+1:])
			s.roots[len(s.roots)-1] = ""
			s.roots = s.roots[:len(s.roots)-1]
			s.changed = true
			return
		}
	}
}

// --- Highlight set ---

// SetHighlighted replaces the highlight set. Nodes entering or leaving the
// set are marked dirty.
func (s *Scene) SetHighlighted(ids ...NodeID) {
	for _, id := range s.highlight {
		s.MarkDirty(id)
	}
	s.highlight = append(s.highlight[:0], ids...)
	for _, id := range s.highlight {
		s.MarkDirty(id)
	}
}

// AddHighlight adds one node to the highlight set.
func (s *Scene) AddHighlight(id NodeID) {
	if s.IsHighlighted(id) {
		return
	}
	s.highlight = append(s.highlight, id)
	s.MarkDirty(id)
}

// RemoveHighlight removes one node from the highlight set.
func (s *Scene) RemoveHighlight(id NodeID) {
	for i, h := range s.highlight {
		if h == id {
			s.highlight = append(s.highlight[:i], s.highlight[i+1:]...)
			s.MarkDirty(id)
			return
		}
	}
}

// IsHighlighted reports whether id is in the highlight set.
func (s *Scene) IsHighlighted(id NodeID) bool {
	for _, h := range s.highlight {
		if h == id {
			return true
		}
	}
	return false
}

// Highlighted returns the highlight set.
func (s *Scene) Highlighted() []NodeID { return s.highlight }
