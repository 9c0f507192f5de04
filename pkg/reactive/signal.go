package reactive

import (
	"reflect"
	"sync"
)

// subscribers is the set of listeners attached to one cell, keyed by
// listener ID so a listener that reads a cell twice is notified once.
type subscribers struct {
	mu   sync.RWMutex
	byID map[uint64]Listener
}

func (s *subscribers) add(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	if s.byID == nil {
		s.byID = make(map[uint64]Listener)
	}
	s.byID[l.ID()] = l
	s.mu.Unlock()
}

func (s *subscribers) remove(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	delete(s.byID, l.ID())
	s.mu.Unlock()
}

func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// notify marks every subscriber dirty, or queues them on the open batch.
// The set is copied first so listeners run with no lock held and may
// subscribe or unsubscribe freely.
func (s *subscribers) notify() {
	s.mu.RLock()
	list := make([]Listener, 0, len(s.byID))
	for _, l := range s.byID {
		list = append(list, l)
	}
	s.mu.RUnlock()

	if getBatchDepth() > 0 {
		for _, l := range list {
			queuePendingUpdate(l)
		}
		return
	}
	for _, l := range list {
		l.MarkDirty()
	}
}

// Signal is a reactive value container.
// Reading a Signal's value while a listener is active subscribes that
// listener to receive notifications when the value changes.
type Signal[T any] struct {
	id   uint64
	subs subscribers

	mu    sync.RWMutex
	value T

	// equal decides whether a write changed the value.
	// If nil, uses defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
// The signal is not owned by any scope; see UseSignal for hook-slot identity.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{id: nextID(), value: initial}
}

// Get returns the current value. When called inside WithListener or a host
// render, the active listener is subscribed to later writes.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock.
	if listener := getCurrentListener(); listener != nil {
		s.subs.add(listener)
	}

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value. Subscribers are notified only when the value differs
// from the stored one under the signal's equality.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

// Update replaces the value with fn(current) under the write lock, so
// concurrent read-modify-write cycles on a field do not lose updates.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

// Unsubscribe removes l from this signal's subscribers.
func (s *Signal[T]) Unsubscribe(l Listener) {
	s.subs.remove(l)
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// subscriberCount is used by tests.
func (s *Signal[T]) subscriberCount() int {
	return s.subs.len()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable types and reflect.DeepEqual
// for everything else. For Signal[any] the dynamic types may differ, in
// which case the values are unequal.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
