package singleton

import "sync"

// Observer receives provider lifecycle events. Implementations must be safe
// for concurrent use: constructions of different types can emit at the same
// time.
//
// On is called while the emitting type's lock is held, so it must be quick
// and must not call Instance for the type named in the event.
type Observer interface {
	On(eventData EventData)
}

// Event represents a provider event type.
type Event int

const (
	// EventConstructed is emitted after an instance is published.
	EventConstructed Event = iota
	// EventConstructFailed is emitted when InitSingleton returns an error.
	EventConstructFailed
	// EventRejected is emitted when a requested type fails the eligibility
	// checks.
	EventRejected
)

// EventData carries the details of a provider event.
type EventData struct {
	// Event is the kind of notification.
	Event Event

	// Type is the reflect string of the type the event is about.
	Type string

	// Err is the ConstructionError or ConfigurationError for failure events,
	// nil for EventConstructed.
	Err error
}

var (
	obsMu    sync.RWMutex
	observer Observer
)

// SetObserver installs o as the process-wide event observer, replacing any
// previous one. Passing nil turns event delivery off.
//
// Only slow-path activity emits events; reads of an already constructed
// instance never do.
func SetObserver(o Observer) {
	obsMu.Lock()
	observer = o
	obsMu.Unlock()
}

func notify(d EventData) {
	obsMu.RLock()
	o := observer
	obsMu.RUnlock()
	if o == nil {
		return
	}
	o.On(d)
}
