package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Watcher is a Listener that invokes a callback when marked dirty.
// Signals read while the watcher is the current listener (see Watch)
// subscribe it.
type Watcher struct {
	id       uint64
	fn       func()
	disposed atomic.Bool
}

// NewWatcher creates a watcher that calls fn on every change notification.
func NewWatcher(fn func()) *Watcher {
	return &Watcher{id: nextID(), fn: fn}
}

// MarkDirty implements Listener.
func (w *Watcher) MarkDirty() {
	if w.disposed.Load() || w.fn == nil {
		return
	}
	w.fn()
}

// ID implements Listener.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Watch runs fn with the watcher as the current listener, subscribing it to
// every signal read inside fn.
func (w *Watcher) Watch(fn func()) {
	WithListener(w, fn)
}

// Dispose stops the watcher from receiving further notifications.
func (w *Watcher) Dispose() {
	w.disposed.Store(true)
}
