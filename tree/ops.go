package tree

import (
	"sort"

	"github.com/Buarzej/treelock/internal/nodelock"
	"github.com/Buarzej/treelock/internal/pathutil"
)

// List returns the comma-joined, sorted names of path's immediate children.
func (t *Tree) List(path string) (string, error) {
	if !pathutil.IsValid(path) {
		return "", ErrInvalid
	}

	n, ok := descend(t.root, path, modeRead)
	if !ok {
		return "", ErrNotExist
	}

	names := n.children.Names()
	sort.Strings(names)
	result := pathutil.JoinNames(names)
	n.lock.RUnlock()

	return result, nil
}

// Create adds an empty directory at path. path's parent must already exist.
func (t *Tree) Create(path string) error {
	if !pathutil.IsValid(path) {
		return ErrInvalid
	}
	if path == "/" {
		return ErrExist
	}

	parent, child, err := t.lockParentWrite(path)
	if err != nil {
		return err
	}

	if !parent.children.Insert(child, newNode()) {
		parent.lock.Unlock()
		return ErrExist
	}
	parent.lock.Unlock()
	return nil
}

// Remove deletes the (empty) directory at path.
func (t *Tree) Remove(path string) error {
	if !pathutil.IsValid(path) {
		return ErrInvalid
	}
	if path == "/" {
		return ErrBusy
	}

	parent, child, err := t.lockParentWrite(path)
	if err != nil {
		return err
	}

	childNode, exists := parent.children.Get(child)
	if !exists {
		parent.lock.Unlock()
		return ErrNotExist
	}

	// Drain the subtree before touching it: this blocks until every
	// in-progress operation inside childNode has completed. If it turns
	// out not to be empty, we simply abandon this remove-mode acquisition:
	// LockRemove changed none of childNode's lock state, so later readers
	// and writers proceed normally once we unlock the parent below.
	childNode.lock.LockRemove()

	if childNode.children.Len() != 0 {
		parent.lock.Unlock()
		return ErrNotEmpty
	}

	childNode.destroy()
	parent.children.Delete(child)
	parent.lock.Unlock()
	return nil
}

// Move atomically reparents the directory at source to target, which must
// not yet exist. Moving a directory onto itself is a no-op; moving a
// directory into its own subtree is rejected.
func (t *Tree) Move(source, target string) error {
	if !pathutil.IsValid(source) || !pathutil.IsValid(target) {
		return ErrInvalid
	}
	if source == "/" {
		return ErrBusy
	}
	if target == "/" {
		return ErrExist
	}
	if source == target {
		return nil
	}
	if pathutil.IsSubdirectory(source, target) {
		return ErrMoveIntoSelf
	}

	sourceParentPath, sourceName := pathutil.ParentOf(source)
	targetParentPath, targetName := pathutil.ParentOf(target)
	lcp := pathutil.LongestCommonPath(sourceParentPath, targetParentPath)

	lca, err := t.lockLCA(lcp)
	if err != nil {
		return err
	}

	// Lock target's parent before source's parent. This order decides which
	// error is returned when both ErrExist and ErrNotExist would apply; it
	// is not what prevents deadlock, since lca stays write-locked until
	// both descents below it have finished.
	targetParent, targetIsLCA, err := lockFromLCA(lca, lcp, targetParentPath)
	if err != nil {
		lca.lock.Unlock()
		return err
	}

	if _, exists := targetParent.children.Get(targetName); exists {
		releaseMoveLocks(lca, targetParent, targetIsLCA, nil, false)
		return ErrExist
	}

	sourceParent, sourceIsLCA, err := lockFromLCA(lca, lcp, sourceParentPath)
	if err != nil {
		releaseMoveLocks(lca, targetParent, targetIsLCA, nil, false)
		return err
	}

	sourceNode, exists := sourceParent.children.Get(sourceName)
	if !exists {
		releaseMoveLocks(lca, targetParent, targetIsLCA, sourceParent, sourceIsLCA)
		return ErrNotExist
	}

	// Both descents below the LCA have landed in disjoint children of lca
	// (they diverge at lcp by construction), so the LCA's only remaining
	// job — serializing other movers that touch this LCA region — is
	// done once neither S nor T still needs it.
	if !targetIsLCA && !sourceIsLCA {
		lca.lock.Unlock()
	}

	// Drain the whole moved subtree to quiescence before any thread can
	// observe it reparented.
	lockSubtreeRemove(sourceNode)

	moved := &node{children: sourceNode.children, lock: nodelock.New()}
	targetParent.children.Insert(targetName, moved)
	sourceParent.children.Delete(sourceName)

	if targetIsLCA && sourceIsLCA {
		lca.lock.Unlock()
	} else {
		targetParent.lock.Unlock()
		sourceParent.lock.Unlock()
	}

	return nil
}

// lockParentWrite locks path's parent directory in write mode and returns
// it along with path's final component. If any directory along the way is
// missing, no lock is held on return.
func (t *Tree) lockParentWrite(path string) (parent *node, child string, err error) {
	parentPath, child := pathutil.ParentOf(path)
	if parentPath == "/" {
		t.root.lock.Lock()
		return t.root, child, nil
	}

	grandparentPath, parentName := pathutil.ParentOf(parentPath)
	grandparent, ok := descend(t.root, grandparentPath, modeRead)
	if !ok {
		return nil, "", ErrNotExist
	}

	parentNode, exists := grandparent.children.Get(parentName)
	if !exists {
		grandparent.lock.RUnlock()
		return nil, "", ErrNotExist
	}

	parentNode.lock.Lock()
	grandparent.lock.RUnlock()
	return parentNode, child, nil
}

// lockLCA locks, in write mode, the node at lcp — the longest common path
// prefix of source's and target's parents in a Move.
func (t *Tree) lockLCA(lcp string) (*node, error) {
	if lcp == "/" {
		t.root.lock.Lock()
		return t.root, nil
	}

	lcaParentPath, lcaName := pathutil.ParentOf(lcp)
	lcaParent, ok := descend(t.root, lcaParentPath, modeRead)
	if !ok {
		return nil, ErrNotExist
	}

	lcaNode, exists := lcaParent.children.Get(lcaName)
	if !exists {
		lcaParent.lock.RUnlock()
		return nil, ErrNotExist
	}

	lcaNode.lock.Lock()
	lcaParent.lock.RUnlock()
	return lcaNode, nil
}

// lockFromLCA locks, in write mode, the node at destParentPath, which is
// known to lie at or beneath lca (the node at lcp). If destParentPath ==
// lcp, the destination is lca itself and no additional lock is taken;
// isLCA reports this so the caller knows not to unlock it a second time.
func lockFromLCA(lca *node, lcp, destParentPath string) (dest *node, isLCA bool, err error) {
	if destParentPath == lcp {
		return lca, true, nil
	}

	suffix := pathutil.RemovePrefix(lcp, destParentPath)
	n, ok := descendFromBorrowed(lca, suffix, modeWrite)
	if !ok {
		return nil, false, ErrNotExist
	}
	return n, false, nil
}

// releaseMoveLocks unlocks the write locks acquired so far on an aborted
// Move, taking care not to unlock the LCA node twice when it doubles as
// source's or target's parent.
func releaseMoveLocks(lca, targetParent *node, targetIsLCA bool, sourceParent *node, sourceIsLCA bool) {
	if sourceParent != nil && !sourceIsLCA {
		sourceParent.lock.Unlock()
	}
	if targetParent != nil && !targetIsLCA {
		targetParent.lock.Unlock()
	}
	lca.lock.Unlock()
}

// lockSubtreeRemove acquires remove-mode on n and, recursively, every node
// beneath it. Pre-order is sufficient: a child can only be reached by
// traversing its parent, which this acquisition has already closed off.
func lockSubtreeRemove(n *node) {
	n.lock.LockRemove()
	n.children.Each(func(_ string, child *node) {
		lockSubtreeRemove(child)
	})
}
