package reactive

// Batch runs fn and holds back change notifications until it returns.
// A listener subscribed to several cells written inside fn is marked dirty
// once, so a host re-renders a store once per group of field writes.
// Nested batches flush with the outermost one. Pending notifications are
// delivered even if fn panics.
//
//	Batch(func() {
//	    name.Set("Jane")
//	    city.Set("Shelbyville")
//	}) // the host's watcher fires once here
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth > 0 {
			return
		}
		pending := ctx.pendingUpdates
		ctx.pendingUpdates = nil
		releaseTrackingContext(ctx)
		notifyOnce(pending)
	}()

	fn()
}

// notifyOnce marks each distinct listener dirty, in first-queued order.
func notifyOnce(listeners []Listener) {
	if len(listeners) == 0 {
		return
	}
	seen := make(map[uint64]struct{}, len(listeners))
	for _, l := range listeners {
		if _, dup := seen[l.ID()]; dup {
			continue
		}
		seen[l.ID()] = struct{}{}
		l.MarkDirty()
	}
}

// Untracked runs fn with no current listener, so cell reads inside it do
// not subscribe anyone. Prefer Peek for a single read.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
