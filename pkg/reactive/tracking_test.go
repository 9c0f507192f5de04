package reactive

import (
	"sync"
	"testing"
)

// testListener is a simple listener for testing.
type testListener struct {
	id         uint64
	dirtyCount int
	mu         sync.Mutex
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirtyCount++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirtyCount
}

func TestGetTrackingContext(t *testing.T) {
	ctx1 := getTrackingContext()
	ctx2 := getTrackingContext()

	if ctx1 != ctx2 {
		t.Error("getTrackingContext should return same context for same goroutine")
	}
	releaseTrackingContext(ctx1)
	if lookupTrackingContext() != nil {
		t.Error("idle context should be released")
	}
}

func TestTrackingContextsReleasedAfterUse(t *testing.T) {
	before := trackingContextCount()
	owner := NewOwner(nil)
	cell := NewSignal(0)

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cell.Get()
			Batch(func() { cell.Set(i) })
			WithListener(newTestListener(), func() { _ = cell.Get() })
			Untracked(func() { _ = cell.Get() })
			WithOwner(owner, func() {})
		}(i)
	}
	wg.Wait()

	if got := trackingContextCount(); got != before {
		t.Errorf("expected %d tracking contexts after goroutines exit, got %d", before, got)
	}
}

func TestTrackingContextKeptWhileScoped(t *testing.T) {
	WithListener(newTestListener(), func() {
		Batch(func() {
			if lookupTrackingContext() == nil {
				t.Fatal("context should exist inside a batch")
			}
		})
		if lookupTrackingContext() == nil {
			t.Error("batch exit should not release a context that still has a listener")
		}
	})
	if lookupTrackingContext() != nil {
		t.Error("context should be released once the listener is restored")
	}
}

func TestTrackingContextIsolation(t *testing.T) {
	owner := NewOwner(nil)

	WithOwner(owner, func() {
		done := make(chan *Owner)
		go func() {
			done <- CurrentOwner()
		}()
		if got := <-done; got != nil {
			t.Errorf("owner leaked into another goroutine: %v", got.ID())
		}
		if CurrentOwner() != owner {
			t.Error("CurrentOwner should be the owner set by WithOwner")
		}
	})

	if CurrentOwner() != nil {
		t.Error("WithOwner should restore the previous owner")
	}
}

func TestWithListenerRestores(t *testing.T) {
	outer := newTestListener()
	inner := newTestListener()

	WithListener(outer, func() {
		WithListener(inner, func() {
			if getCurrentListener() != inner {
				t.Error("expected inner listener")
			}
		})
		if getCurrentListener() != outer {
			t.Error("expected outer listener to be restored")
		}
	})

	if getCurrentListener() != nil {
		t.Error("expected no listener after WithListener returns")
	}
}

func TestRenderDepth(t *testing.T) {
	owner := NewOwner(nil)

	if isInRender() {
		t.Fatal("should not be in render before StartRender")
	}
	owner.StartRender()
	if !isInRender() {
		t.Error("should be in render after StartRender")
	}
	owner.EndRender()
	if isInRender() {
		t.Error("should not be in render after EndRender")
	}
	if lookupTrackingContext() != nil {
		t.Error("context should be released after the render pass")
	}
}
