package strata

// RebuildDrawList walks every root depth-first, refreshes transforms,
// stamps clip chains and render indices on visible primitives, and sorts
// the result by (ZTier, ZOrder, render index).
//
// Ignored nodes skip their whole subtree. A dirty group marks every
// descendant dirty and is itself clean afterwards.
func (s *Scene) RebuildDrawList() []*Node {
	s.drawList = s.drawList[:0]
	counter := 0
	for _, id := range s.roots {
		if n := s.arena.nodes[id]; n != nil {
			s.traverse(n, nil, nil, false, &counter)
		}
	}
	s.mergeSort()
	s.changed = false
	return s.drawList
}

func (s *Scene) traverse(n *Node, parent *TransformState, chain []*Node, forceDirty bool, counter *int) {
	if n.Ignore {
		return
	}
	n.Transform.Update(parent)
	if forceDirty {
		n.dirty = true
	}

	if n.kind == KindPrimitive {
		n.clipChain = chain
		n.renderIndex = *counter
		*counter++
		s.drawList = append(s.drawList, n)
		return
	}

	dirty := n.dirty
	if n.clip != nil {
		n.clip.Transform.Update(&n.Transform)
		// Each branch gets its own chain; siblings never share appends.
		next := make([]*Node, len(chain)+1)
		copy(next, chain)
		next[len(chain)] = n.clip
		chain = next
	}
	for _, id := range n.children {
		if c := s.arena.nodes[id]; c != nil {
			s.traverse(c, &n.Transform, chain, dirty, counter)
		}
	}
	n.dirty = false
}

func drawLessOrEqual(a, b *Node) bool {
	if a.ZTier != b.ZTier {
		return a.ZTier < b.ZTier
	}
	if a.ZOrder != b.ZOrder {
		return a.ZOrder < b.ZOrder
	}
	return a.renderIndex <= b.renderIndex
}

// mergeSort sorts s.drawList in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: stable, and allocation-free once the buffer has
// grown to its high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.drawList)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]*Node, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.drawList
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.drawList, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []*Node, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if drawLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
