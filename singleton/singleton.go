package singleton

import (
	"reflect"
	"sync"

	"go.uber.org/atomic"
)

// slot holds the construction state for one managed type.
//
// done flips to true only after val holds the fully constructed instance, and
// never flips back, so a true load on the fast path guarantees val is safe to
// read without the mutex.
type slot struct {
	mu   sync.Mutex
	done atomic.Bool
	val  any
}

// slots maps reflect.Type to *slot. Slots are created on first request and
// never removed; a slot is reused across failed attempts for its type.
var slots sync.Map

func slotFor(tt reflect.Type) *slot {
	if s, ok := slots.Load(tt); ok {
		return s.(*slot)
	}
	s, _ := slots.LoadOrStore(tt, &slot{})
	return s.(*slot)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Instance returns the process-wide instance of T, constructing it on first
// use.
//
// T must be a named, unexported struct type whose pointer type implements
// Initializer; anything else is rejected with a ConfigurationError. On first
// use the provider allocates new(T) and calls InitSingleton under the type's
// lock, so concurrent callers during construction block and observe either
// the finished instance or the construction failure of their own attempt.
// Once a call has succeeded, Instance never returns an error for T again and
// every call returns the same pointer.
//
// Failures are not cached. A ConfigurationError is recomputed per call, and
// after a ConstructionError the slot stays empty so the next call retries
// with a fresh zero value. A panic inside InitSingleton propagates to the
// caller and also leaves the slot empty.
//
// InitSingleton must not request the same type again, directly or through a
// dependency cycle; like sync.Once, the lock is not reentrant and such a call
// deadlocks.
func Instance[T any]() (*T, error) {
	s := slotFor(typeOf[T]())
	if s.done.Load() {
		return s.val.(*T), nil
	}
	return instanceSlow[T](s)
}

// instanceSlow is kept out of line so the constructed path of Instance stays
// inlinable.
func instanceSlow[T any](s *slot) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished construction while we waited.
	if s.done.Load() {
		return s.val.(*T), nil
	}

	tt := typeOf[T]()
	if reason := ineligible(tt); reason != "" {
		err := ConfigurationError{Type: tt.String(), Reason: reason}
		notify(EventData{Event: EventRejected, Type: err.Type, Err: err})
		return nil, err
	}

	v := new(T)
	// The assertion cannot fail: ineligible verified that *T implements
	// Initializer.
	if err := any(v).(Initializer).InitSingleton(); err != nil {
		cerr := ConstructionError{Type: tt.String(), Err: err}
		notify(EventData{Event: EventConstructFailed, Type: cerr.Type, Err: cerr})
		return nil, cerr
	}

	s.val = v
	s.done.Store(true)
	notify(EventData{Event: EventConstructed, Type: tt.String()})
	return v, nil
}

// MustInstance returns the process-wide instance of T or panics.
//
// It panics with the ConfigurationError or ConstructionError that Instance
// would have returned. Intended for composition roots and generated
// accessors where a missing singleton is fatal.
func MustInstance[T any]() *T {
	v, err := Instance[T]()
	if err != nil {
		panic(err)
	}
	return v
}

// Initialized reports whether the T instance has been constructed.
//
// It never triggers construction and returns false for types that were only
// ever rejected or whose construction has only ever failed.
func Initialized[T any]() bool {
	if s, ok := slots.Load(typeOf[T]()); ok {
		return s.(*slot).done.Load()
	}
	return false
}
