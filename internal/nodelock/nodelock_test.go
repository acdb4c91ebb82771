package nodelock

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRLockAllowsMultipleReaders(t *testing.T) {
	l := New()
	l.RLock()
	l.RLock()
	l.RLock()
	l.RUnlock()
	l.RUnlock()
	l.RUnlock()
}

func TestWriterExcludesReaders(t *testing.T) {
	l := New()
	l.Lock()

	entered := make(chan struct{})
	go func() {
		l.RLock()
		close(entered)
		l.RUnlock()
	}()

	select {
	case <-entered:
		t.Fatal("reader entered while a writer held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	l.Unlock()
	<-entered
}

func TestWriterExcludesWriters(t *testing.T) {
	l := New()
	l.Lock()

	entered := make(chan struct{})
	go func() {
		l.Lock()
		close(entered)
		l.Unlock()
	}()

	select {
	case <-entered:
		t.Fatal("second writer entered while the first held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	l.Unlock()
	<-entered
}

func TestRemoveWaitsForQuiescence(t *testing.T) {
	l := New()
	l.RLock()

	removed := make(chan struct{})
	go func() {
		l.LockRemove()
		close(removed)
	}()

	select {
	case <-removed:
		t.Fatal("remover entered while a reader was active")
	case <-time.After(20 * time.Millisecond):
	}

	l.RUnlock()
	<-removed
}

func TestRemoveWaitsForWaitingWriter(t *testing.T) {
	l := New()
	l.RLock()

	writerWaiting := make(chan struct{})
	go func() {
		close(writerWaiting)
		l.Lock()
		l.Unlock()
	}()
	<-writerWaiting
	time.Sleep(10 * time.Millisecond)

	removed := make(chan struct{})
	go func() {
		l.LockRemove()
		close(removed)
	}()

	select {
	case <-removed:
		t.Fatal("remover entered while a writer was still waiting")
	case <-time.After(20 * time.Millisecond):
	}

	l.RUnlock()
	<-removed
}

// TestNoWriterStarvation exercises the "change" handoff: a steady stream of
// readers must not starve a waiting writer indefinitely.
func TestNoWriterStarvation(t *testing.T) {
	l := New()
	l.RLock()

	writerDone := make(chan struct{})
	go func() {
		l.Lock()
		close(writerDone)
		l.Unlock()
	}()

	time.Sleep(10 * time.Millisecond) // let the writer enqueue

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				l.RLock()
				time.Sleep(time.Millisecond)
				l.RUnlock()
			}
		}()
	}

	l.RUnlock() // release the initial reader so the writer can be handed off

	select {
	case <-writerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("writer starved by a continuous stream of readers")
	}
	close(stop)
	wg.Wait()
}

// TestNondecreasing runs concurrent writers each incrementing a shared
// counter under the write lock and readers observing it; the value read
// under a read lock must never be visible as decreasing across a goroutine's
// own successive observations once a writer has committed.
func TestNondecreasing(t *testing.T) {
	l := New()
	var counter int
	var wg sync.WaitGroup

	const writers = 8
	const itersPerWriter = 200

	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < itersPerWriter; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		last := -1
		for i := 0; i < 500; i++ {
			l.RLock()
			cur := counter
			l.RUnlock()
			assert.GreaterOrEqual(t, cur, last)
			last = cur
			time.Sleep(time.Microsecond)
		}
	}()

	wg.Wait()
	<-readDone
	assert.Equal(t, writers*itersPerWriter, counter)
}

// TestRandomizedWorkload hammers a single lock with a random mix of readers
// and writers looking for deadlock or a panic from a violated invariant.
func TestRandomizedWorkload(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	seed := time.Now().UnixNano()
	rng := rand.New(rand.NewSource(seed))

	const goroutines = 20
	const opsEach = 200

	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		r := rand.New(rand.NewSource(rng.Int63()))
		go func(r *rand.Rand) {
			defer wg.Done()
			for i := 0; i < opsEach; i++ {
				if r.Intn(10) < 2 {
					l.Lock()
					l.Unlock()
				} else {
					l.RLock()
					l.RUnlock()
				}
			}
		}(r)
	}
	wg.Wait()
}

func TestRUnlockOfUnheldLockPanics(t *testing.T) {
	l := New()
	assert.Panics(t, func() { l.RUnlock() })
}

func TestUnlockOfUnheldLockPanics(t *testing.T) {
	l := New()
	assert.Panics(t, func() { l.Unlock() })
}
