package tree

import "github.com/Buarzej/treelock/internal/pathutil"

// lockMode selects which of a node's lock modes a descent acquires at each
// step.
type lockMode int

const (
	modeRead lockMode = iota
	modeWrite
)

func (m lockMode) lock(n *node) {
	switch m {
	case modeRead:
		n.lock.RLock()
	case modeWrite:
		n.lock.Lock()
	default:
		panic("tree: unknown lock mode")
	}
}

func (m lockMode) unlock(n *node) {
	switch m {
	case modeRead:
		n.lock.RUnlock()
	case modeWrite:
		n.lock.Unlock()
	default:
		panic("tree: unknown lock mode")
	}
}

// descend performs a hand-over-hand traversal from root along path,
// acquiring every visited node in mode and releasing each ancestor only
// once its child is safely acquired. It returns the node at path, still
// locked in mode, or (nil, false) if any component along the way is
// missing — in which case no locks remain held.
func descend(root *node, path string, mode lockMode) (*node, bool) {
	mode.lock(root)
	return descendFromLocked(root, path, mode)
}

// descendFromLocked continues a hand-over-hand descent whose current node,
// start, is already locked in mode and owned by this call: on every path,
// including failure, start's lock (or that of whichever descendant
// replaced it) is released before returning, except for the final
// destination node on success, which is returned still locked.
func descendFromLocked(start *node, subpath string, mode lockMode) (*node, bool) {
	cur := start
	for {
		component, rest, ok := pathutil.Split(subpath)
		if !ok {
			return cur, true
		}

		next, exists := cur.children.Get(component)
		if !exists {
			mode.unlock(cur)
			return nil, false
		}

		mode.lock(next)
		mode.unlock(cur)
		cur = next
		subpath = rest
	}
}

// descendFromBorrowed continues a hand-over-hand descent whose current
// node, start, is already locked in mode but is *borrowed*: unlike
// descendFromLocked, this call never releases start itself, even on the
// first hop or on failure. This is exactly what Move needs when growing
// two independent descents out from a shared, externally-owned LCA lock.
func descendFromBorrowed(start *node, subpath string, mode lockMode) (*node, bool) {
	component, rest, ok := pathutil.Split(subpath)
	if !ok {
		// subpath == "/": the destination is start itself. Move never
		// calls this case (it special-cases destParentPath == lcp
		// before reaching here), but handle it for completeness.
		return start, true
	}

	next, exists := start.children.Get(component)
	if !exists {
		return nil, false
	}

	mode.lock(next)
	return descendFromLocked(next, rest, mode)
}
