package singleton

import (
	"sync"

	"go.uber.org/atomic"
)

// Cell is a lazily initialized container for a single *T, independent of the
// package-wide provider. It carries no eligibility rules and no events: any T
// works, the init function is supplied by the caller, and the caller owns the
// Cell's scope and lifetime.
//
// The zero value is ready to use. A Cell must not be copied after first use.
//
// Use a Cell instead of Instance when the type cannot be unexported, when one
// type needs several independent instances, or when construction needs
// captured arguments.
type Cell[T any] struct {
	mu   sync.Mutex
	done atomic.Bool
	val  *T
}

// Get returns the contained instance, calling init to construct it on first
// use.
//
// Only the winning caller runs init; concurrent callers block until it
// finishes. Errors are not cached: if init returns an error or a nil
// instance, the cell stays empty and the next Get runs its init again. Once
// a Get has succeeded, every later Get returns the same pointer and init is
// ignored. A nil init yields ErrNilInit, a nil instance ErrNilInstance.
func (c *Cell[T]) Get(init func() (*T, error)) (*T, error) {
	if c.done.Load() {
		return c.val, nil
	}
	return c.getSlow(init)
}

// getSlow is kept out of line so the initialized path of Get stays
// inlinable.
func (c *Cell[T]) getSlow(init func() (*T, error)) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done.Load() {
		return c.val, nil
	}
	if init == nil {
		return nil, ErrNilInit
	}
	v, err := init()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNilInstance
	}
	c.val = v
	c.done.Store(true)
	return v, nil
}

// Peek returns the contained instance without constructing it. ok is false
// while the cell is empty.
func (c *Cell[T]) Peek() (*T, bool) {
	if c.done.Load() {
		return c.val, true
	}
	return nil, false
}

// Initialized reports whether the cell holds a constructed instance.
func (c *Cell[T]) Initialized() bool { return c.done.Load() }
