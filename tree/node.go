// Package tree implements an in-memory, thread-safe hierarchical namespace
// of unnamed directories holding named child directories, addressed by
// absolute slash-separated paths. It composes internal/nodelock (per-node
// reader/writer/remover coordination), internal/pathutil (path validation
// and decomposition), and internal/childmap (the children index) into the
// four externally visible operations: List, Create, Remove, and Move.
package tree

import (
	"github.com/Buarzej/treelock/internal/childmap"
	"github.com/Buarzej/treelock/internal/nodelock"
)

// node is a single directory: a children index plus the lock that
// coordinates concurrent traversal and mutation of this node and, by
// extension, gates entry into its subtree.
type node struct {
	children *childmap.Map[*node]
	lock     *nodelock.Lock
}

func newNode() *node {
	return &node{
		children: childmap.New[*node](),
		lock:     nodelock.New(),
	}
}

// destroy walks n's subtree, calling destroy on every descendant. It frees
// nothing explicitly and leaves every children map in place; the nodes are
// reclaimed by the garbage collector once they are unreachable. The caller
// must ensure no other goroutine can reach n: Remove holds it in remove
// mode, and Close assumes the tree is no longer in use.
func (n *node) destroy() {
	n.children.Each(func(_ string, child *node) {
		child.destroy()
	})
}

// Tree is a handle on the root of a directory namespace. The zero value is
// not usable; construct one with New.
type Tree struct {
	root *node
}

// New returns a new, empty Tree containing only the root directory "/".
func New() *Tree {
	return &Tree{root: newNode()}
}

// Close calls destroy on the root, which walks every directory in the tree
// without clearing it. The Tree must not be used afterwards. Close does not itself take any node's lock: it is intended
// for use once no other goroutine can be operating on the tree.
func (t *Tree) Close() {
	t.root.destroy()
}
