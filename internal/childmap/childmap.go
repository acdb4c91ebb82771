// Package childmap implements the unordered, string-keyed map of child
// names to child values held by every tree node. It is a thin, type-safe
// wrapper over a Go map: it carries no locking of its own and relies on its
// caller (package tree, via internal/nodelock) to serialize access.
package childmap

// Map is a finite mapping from component name to a child value V.
type Map[V any] struct {
	m map[string]V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{m: make(map[string]V)}
}

// Get returns the value stored for name, if any.
func (m *Map[V]) Get(name string) (V, bool) {
	v, ok := m.m[name]
	return v, ok
}

// Insert stores value under name. It returns true if name was previously
// unoccupied, false if it already held a value (in which case the map is
// left unchanged).
func (m *Map[V]) Insert(name string, value V) bool {
	if _, exists := m.m[name]; exists {
		return false
	}
	m.m[name] = value
	return true
}

// Delete removes name from the map. It returns true if name was present.
func (m *Map[V]) Delete(name string) bool {
	if _, exists := m.m[name]; !exists {
		return false
	}
	delete(m.m, name)
	return true
}

// Len returns the number of entries in the map.
func (m *Map[V]) Len() int {
	return len(m.m)
}

// Names returns the set of keys currently stored, in unspecified order.
func (m *Map[V]) Names() []string {
	names := make([]string, 0, len(m.m))
	for name := range m.m {
		names = append(names, name)
	}
	return names
}

// Each calls fn once per (name, value) pair in unspecified order. fn must
// not mutate the map.
func (m *Map[V]) Each(fn func(name string, value V)) {
	for name, value := range m.m {
		fn(name, value)
	}
}
