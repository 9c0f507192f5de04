package reactive

import (
	"sync"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if value := count.Peek(); value != 42 {
			t.Errorf("expected 42, got %d", value)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value should not notify
	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("same value should not notify, got %d", listener.getDirtyCount())
	}

	count.Set(2)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalSubscribeDeduplicates(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	if n := count.subscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})
	count.Unsubscribe(listener)

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("unsubscribed listener notified %d times", listener.getDirtyCount())
	}
}

func TestSignalAnyMixedTypes(t *testing.T) {
	// Signal[any] must tolerate writes that change the dynamic type.
	cell := NewSignal[any]("bar")
	listener := newTestListener()
	WithListener(listener, func() {
		_ = cell.Get()
	})

	cell.Set(42)
	if cell.Get() != 42 {
		t.Errorf("expected 42, got %v", cell.Get())
	}
	cell.Set([]any{"a", "b"})
	cell.Set([]any{"a", "b"})
	cell.Set(nil)

	if listener.getDirtyCount() != 3 {
		t.Errorf("expected 3 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	type user struct {
		ID   int
		Name string
	}

	sig := NewSignal(user{ID: 1, Name: "a"}).WithEquals(func(a, b user) bool {
		return a.ID == b.ID
	})
	listener := newTestListener()
	WithListener(listener, func() {
		_ = sig.Get()
	})

	sig.Set(user{ID: 1, Name: "b"})
	if listener.getDirtyCount() != 0 {
		t.Errorf("custom equality should suppress notification, got %d", listener.getDirtyCount())
	}
	if sig.Get().Name != "a" {
		t.Errorf("value should be unchanged, got %q", sig.Get().Name)
	}
}

func TestSignalConcurrentSet(t *testing.T) {
	count := NewSignal(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if count.Peek() != 50 {
		t.Errorf("expected 50, got %d", count.Peek())
	}
}

func TestWatcher(t *testing.T) {
	name := NewSignal("john")
	calls := 0
	w := NewWatcher(func() { calls++ })

	w.Watch(func() {
		_ = name.Get()
	})

	name.Set("jane")
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	w.Dispose()
	name.Set("jim")
	if calls != 1 {
		t.Errorf("disposed watcher should not be called, got %d calls", calls)
	}
}
