// Package reactive provides the reactive cells that back an obsrv store.
//
// It is a small fine-grained reactivity runtime: values live in signals,
// readers subscribe implicitly while a listener is active, and writers
// notify every subscribed listener.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Owner is a scope that owns signals across repeated renders. Signals
// requested through UseSignalIn during a render pass occupy hook slots, so
// the Nth request on every render returns the same signal:
//
//	owner := NewOwner(nil)
//	owner.StartRender()
//	sig := UseSignalIn(owner, 0) // same *Signal on every render
//	owner.EndRender()
//
// Watcher is a Listener that calls a function when any signal it read
// changes. Hosts use it to schedule a re-render.
//
// # Batching
//
// Multiple signal updates can be batched to trigger a single notification:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // Single notification after all updates
//
// # Thread Safety
//
// Signals are safe to read and write from multiple goroutines. Tracking
// state (current owner, listener, batch depth) is per goroutine.
package reactive
