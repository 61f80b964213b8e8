// Package observer defines the notification hook components call into when
// they mutate state, and an ordered registry that dispatches to listeners.
//
// Listeners run synchronously on the caller's goroutine, in registration
// order. The first listener error stops dispatch and is returned to the
// caller of the triggering operation unchanged.
package observer

import (
	"context"
	"slices"
	"sync"
)

// Observer receives named events with a payload (usually a *bean.Bean).
type Observer interface {
	OnEvent(ctx context.Context, event string, payload any) error
}

// Func adapts a plain function to the Observer interface.
type Func func(ctx context.Context, event string, payload any) error

// OnEvent implements Observer.
func (f Func) OnEvent(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}

// registration pairs a listener with the events it subscribed to.
// An empty event set subscribes to every event.
type registration struct {
	observer Observer
	events   []string
}

func (r registration) wants(event string) bool {
	return len(r.events) == 0 || slices.Contains(r.events, event)
}

// Signal is an event source listeners register against.
// The zero value is ready to use. Safe for concurrent Register/Notify.
type Signal struct {
	mu            sync.RWMutex
	registrations []registration
}

// Register adds a listener for the given events (all events if none given).
// Registering the same listener twice makes it fire twice.
func (s *Signal) Register(obs Observer, events ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations = append(s.registrations, registration{
		observer: obs,
		events:   slices.Clone(events),
	})
}

// Len returns the number of registrations.
func (s *Signal) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations)
}

// Notify delivers event to every listener subscribed to it, in registration
// order. Dispatch stops at the first error, which is returned as-is.
func (s *Signal) Notify(ctx context.Context, event string, payload any) error {
	// Snapshot so listeners may register further listeners without deadlock
	s.mu.RLock()
	regs := slices.Clone(s.registrations)
	s.mu.RUnlock()

	for _, r := range regs {
		if !r.wants(event) {
			continue
		}
		if err := r.observer.OnEvent(ctx, event, payload); err != nil {
			return err
		}
	}
	return nil
}
