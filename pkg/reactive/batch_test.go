package reactive

import "testing"

func TestBatchSingleNotification(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	c := NewSignal(0)

	listener := newTestListener()
	WithListener(listener, func() {
		_ = a.Get()
		_ = b.Get()
		_ = c.Get()
	})

	Batch(func() {
		a.Set(1)
		b.Set(2)
		c.Set(3)
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification (batched), got %d", listener.getDirtyCount())
	}
}

func TestBatchNested(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() {
		_ = count.Get()
	})

	Batch(func() {
		count.Set(1)
		Batch(func() {
			count.Set(2)
		})
		if listener.getDirtyCount() != 0 {
			t.Errorf("inner batch should not flush, got %d", listener.getDirtyCount())
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
	if count.Get() != 2 {
		t.Errorf("expected final value 2, got %d", count.Get())
	}
}

func TestBatchFlushesOnPanic(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() {
		_ = count.Get()
	})

	func() {
		defer func() { _ = recover() }()
		Batch(func() {
			count.Set(1)
			panic("boom")
		})
	}()

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected pending update to flush, got %d", listener.getDirtyCount())
	}
	if getBatchDepth() != 0 {
		t.Errorf("batch depth should be reset, got %d", getBatchDepth())
	}
}

func TestUntracked(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_ = count.Get()
		})
	})

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Untracked read should not subscribe, got %d", listener.getDirtyCount())
	}
}
