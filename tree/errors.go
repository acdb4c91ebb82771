package tree

import "errors"

// Sentinel errors returned by the four operations. They are comparable with
// errors.Is and are never wrapped inside this package, so callers that need
// the raw classification can rely on direct comparison as well.
var (
	// ErrInvalid means a path argument failed validation: length,
	// leading/trailing slash, or component alphabet.
	ErrInvalid = errors.New("tree: invalid path")

	// ErrNotExist means some component of a path, or the path's final
	// target, does not exist in the tree.
	ErrNotExist = errors.New("tree: no such directory")

	// ErrExist means the final component of a path already names an
	// existing child of its parent.
	ErrExist = errors.New("tree: directory already exists")

	// ErrNotEmpty means Remove was asked to remove a directory that still
	// has children.
	ErrNotEmpty = errors.New("tree: directory not empty")

	// ErrBusy means an operation targeted the root in a way that is never
	// permitted (removing it, or moving it as a source).
	ErrBusy = errors.New("tree: root directory is busy")

	// ErrMoveIntoSelf means Move's target lies within its source,
	// including the source itself (other than the source == target
	// no-op, which instead returns nil).
	ErrMoveIntoSelf = errors.New("tree: cannot move a directory into itself")
)
