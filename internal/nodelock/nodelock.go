// Package nodelock implements the per-node synchronization primitive used by
// package tree to make concurrent traversal and mutation of the directory
// tree serializable without serializing unrelated subtrees.
//
// A Lock coordinates three classes of caller on one node:
//
//	read:   many concurrent readers; excludes writers and removers.
//	write:  a single writer; excludes readers, other writers, and removers.
//	remove: a single remover, admitted only once the node is entirely
//	        quiescent (no active or waiting reader/writer). A remover never
//	        releases the lock; acquiring remove mode changes none of the
//	        lock's state, so a node that is not destroyed afterwards stays
//	        usable (tree.Remove on a non-empty directory, and the
//	        descendants of a directory moved by tree.Move).
//
// Fairness is implemented with a "change" handoff scalar, following the
// classic readers/writers monitor: a writer releasing the lock decides
// whether the next admission is a cohort of waiting readers or a single
// waiting writer, which prevents either class from starving the other.
// Unlike a plain sync.RWMutex, a Lock additionally supports draining a node
// to quiescence for destructive tree surgery (see tree.Move).
package nodelock

import "sync"

// Lock is the multi-mode lock held by every tree node.
type Lock struct {
	mu sync.Mutex

	readers  *sync.Cond
	writers  *sync.Cond
	removers *sync.Cond

	rc, wc int // active readers, active writers (wc is 0 or 1)
	rw, ww int // waiting readers, waiting writers
	change int // 0: neutral; >0: next `change` admissions are readers; -1: next admission is a writer
}

// New returns an unlocked Lock.
func New() *Lock {
	l := &Lock{}
	l.readers = sync.NewCond(&l.mu)
	l.writers = sync.NewCond(&l.mu)
	l.removers = sync.NewCond(&l.mu)
	return l
}

// RLock blocks until the caller may enter the node as a reader.
func (l *Lock) RLock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.change <= 0 && l.wc+l.ww > 0 {
		l.rw++
		l.readers.Wait()
		l.rw--
	}

	if l.change > 0 {
		l.change--
	}
	l.rc++
	if l.change > 0 {
		// Cascade the wake to the rest of this reader cohort.
		l.readers.Signal()
	}
}

// RUnlock releases a reader held via RLock.
func (l *Lock) RUnlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rc == 0 {
		panic("nodelock: RUnlock of a node with no active readers")
	}
	l.rc--
	if l.rc == 0 && l.ww > 0 {
		l.change = -1
		l.writers.Signal()
	} else if l.rc == 0 {
		l.removers.Signal()
	}
}

// Lock blocks until the caller may enter the node as the sole writer.
func (l *Lock) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.change != -1 && l.wc+l.rc > 0 {
		l.ww++
		l.writers.Wait()
		l.ww--
	}
	l.change = 0
	l.wc++
}

// Unlock releases the writer held via Lock.
func (l *Lock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.wc == 0 {
		panic("nodelock: Unlock of a node with no active writer")
	}
	l.wc--
	if l.rw > 0 {
		l.change = l.rw
		l.readers.Signal()
	} else if l.ww > 0 {
		l.change = -1
		l.writers.Signal()
	} else {
		l.removers.Signal()
	}
}

// LockRemove blocks until the node is entirely quiescent (no active or
// waiting reader or writer), then returns without recording anything in the
// lock's state. There is no corresponding Unlock: the caller either destroys the node, or — in the
// one case tree.Remove allows (a non-empty directory) — simply abandons the
// acquisition, which is safe because no counter was mutated by LockRemove.
func (l *Lock) LockRemove() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.rc+l.wc+l.rw+l.ww > 0 {
		l.removers.Wait()
	}
}
