// Package workload generates randomized operation sequences against a
// directory tree and drives them concurrently, for use by package tree's
// stress tests and by cmd/treed's workload subcommand. It also provides a
// trivial, independently-implemented serial reference model so a test can
// compare outcomes that have no real concurrency in play (disjoint
// subtrees, or a single goroutine) against an obviously-correct oracle.
package workload

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Buarzej/treelock/internal/pathutil"
	"github.com/Buarzej/treelock/tree"
)

// Kind identifies which of the four core operations an Op performs.
type Kind int

const (
	KindList Kind = iota
	KindCreate
	KindRemove
	KindMove
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindCreate:
		return "create"
	case KindRemove:
		return "remove"
	case KindMove:
		return "move"
	default:
		return "unknown"
	}
}

// Op is one randomly generated operation. Target is only meaningful when
// Kind is KindMove.
type Op struct {
	Kind   Kind
	Path   string
	Target string
}

// Dispatcher is satisfied by anything exposing the four core tree
// operations: both *tree.Tree and the Serial reference model below.
type Dispatcher interface {
	List(path string) (string, error)
	Create(path string) error
	Remove(path string) error
	Move(source, target string) error
}

// Apply executes op against d and returns whatever error it produced. Most
// of the errors a random workload produces (ErrExist, ErrNotExist, and so
// on) are expected outcomes of hammering a small, deliberately collision-
// prone namespace, not harness failures.
func Apply(d Dispatcher, op Op) error {
	switch op.Kind {
	case KindList:
		_, err := d.List(op.Path)
		return err
	case KindCreate:
		return d.Create(op.Path)
	case KindRemove:
		return d.Remove(op.Path)
	case KindMove:
		return d.Move(op.Path, op.Target)
	default:
		panic("workload: unknown op kind")
	}
}

// Namespace describes the path space a Generator draws from: Names is the
// pool of component names and Depth bounds how many components a generated
// path may have (not counting the root).
type Namespace struct {
	Names []string
	Depth int
}

// DefaultNamespace is deliberately small and shallow, so concurrent
// goroutines frequently collide on the same paths.
var DefaultNamespace = Namespace{
	Names: []string{"a", "b", "c", "d", "e"},
	Depth: 2,
}

func (ns Namespace) randomPath(r *rand.Rand) string {
	depth := 1 + r.Intn(ns.Depth)
	path := "/"
	for i := 0; i < depth; i++ {
		path += ns.Names[r.Intn(len(ns.Names))] + "/"
	}
	return path
}

// Generate returns n random operations drawn from ns.
func Generate(r *rand.Rand, ns Namespace, n int) []Op {
	ops := make([]Op, n)
	for i := range ops {
		switch r.Intn(4) {
		case 0:
			ops[i] = Op{Kind: KindList, Path: ns.randomPath(r)}
		case 1:
			ops[i] = Op{Kind: KindCreate, Path: ns.randomPath(r)}
		case 2:
			ops[i] = Op{Kind: KindRemove, Path: ns.randomPath(r)}
		case 3:
			ops[i] = Op{Kind: KindMove, Path: ns.randomPath(r), Target: ns.randomPath(r)}
		}
	}
	return ops
}

// Run fans batches of ops out across goroutines (one goroutine per batch)
// against d, using errgroup purely to wait for completion and to surface
// any panic recovered from a goroutine as an error. Op-level errors
// (ErrExist, ErrNotExist, ...) are not propagated: they are ordinary,
// expected results of a randomized workload, not harness failures.
func Run(ctx context.Context, d Dispatcher, batches [][]Op) error {
	g, _ := errgroup.WithContext(ctx)
	for _, batch := range batches {
		batch := batch
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r}
				}
			}()
			for _, op := range batch {
				Apply(d, op)
			}
			return nil
		})
	}
	return g.Wait()
}

// PanicError wraps a value recovered from a goroutine driven by Run.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "workload: goroutine panicked"
}

// Serial is a minimal, single-mutex reference implementation of
// Dispatcher. It shares none of package tree's locking machinery, so it is
// useful as an independent oracle: a test can drive the same Ops against a
// *tree.Tree and a *Serial and expect identical results whenever there is
// no genuine concurrency between the two drivers (e.g. operations confined
// to disjoint subtrees, or a single goroutine replaying a recorded log).
type Serial struct {
	mu    sync.Mutex
	paths map[string]bool // every existing directory path, including "/"
}

// NewSerial returns a Serial reference model containing only the root.
func NewSerial() *Serial {
	return &Serial{paths: map[string]bool{"/": true}}
}

func (s *Serial) List(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !pathutil.IsValid(path) {
		return "", tree.ErrInvalid
	}
	if !s.paths[path] {
		return "", tree.ErrNotExist
	}

	var names []string
	for p := range s.paths {
		if p == "/" {
			continue
		}
		parent, last := pathutil.ParentOf(p)
		if parent == path {
			names = append(names, last)
		}
	}
	sort.Strings(names)
	return pathutil.JoinNames(names), nil
}

func (s *Serial) Create(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !pathutil.IsValid(path) {
		return tree.ErrInvalid
	}
	if path == "/" {
		return tree.ErrExist
	}
	parent, _ := pathutil.ParentOf(path)
	if !s.paths[parent] {
		return tree.ErrNotExist
	}
	if s.paths[path] {
		return tree.ErrExist
	}
	s.paths[path] = true
	return nil
}

func (s *Serial) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !pathutil.IsValid(path) {
		return tree.ErrInvalid
	}
	if path == "/" {
		return tree.ErrBusy
	}
	if !s.paths[path] {
		return tree.ErrNotExist
	}
	for p := range s.paths {
		if p == path {
			continue
		}
		if parent, _ := pathutil.ParentOf(p); parent == path {
			return tree.ErrNotEmpty
		}
	}
	delete(s.paths, path)
	return nil
}

func (s *Serial) Move(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !pathutil.IsValid(source) || !pathutil.IsValid(target) {
		return tree.ErrInvalid
	}
	if source == "/" {
		return tree.ErrBusy
	}
	if target == "/" {
		return tree.ErrExist
	}
	if source == target {
		return nil
	}
	if pathutil.IsSubdirectory(source, target) {
		return tree.ErrMoveIntoSelf
	}

	// Mirrors the real tree's check order exactly: target's parent, then
	// target itself, then source's parent, then source itself. Getting
	// this order right matters because, unlike the other operations, two
	// of Move's error outcomes (ErrNotExist and ErrExist) can both apply
	// to the same call, and only one can be returned.
	targetParent, _ := pathutil.ParentOf(target)
	if !s.paths[targetParent] {
		return tree.ErrNotExist
	}
	if s.paths[target] {
		return tree.ErrExist
	}
	sourceParent, _ := pathutil.ParentOf(source)
	if !s.paths[sourceParent] {
		return tree.ErrNotExist
	}
	if !s.paths[source] {
		return tree.ErrNotExist
	}

	moved := map[string]bool{}
	for p := range s.paths {
		if pathutil.IsSubdirectory(source, p) {
			moved[target+pathutil.RemovePrefix(source, p)[1:]] = true
			delete(s.paths, p)
		}
	}
	for p := range moved {
		s.paths[p] = true
	}
	return nil
}

// Snapshot returns, for each path in allPaths that exists in d, its sorted
// child listing; existing paths not in allPaths are left out. The result is
// suitable for diffing two Dispatchers expected to hold equal state.
func Snapshot(d Dispatcher, allPaths []string) map[string]string {
	out := make(map[string]string, len(allPaths))
	for _, p := range allPaths {
		if listing, err := d.List(p); err == nil {
			out[p] = listing
		}
	}
	return out
}
