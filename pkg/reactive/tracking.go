package reactive

import (
	"runtime"
	"sync"
)

// trackingContext is the reactive state of one goroutine: which owner
// receives new cells, which listener subscribes to reads, and how deep the
// goroutine is inside batches and render passes.
type trackingContext struct {
	gid uint64

	currentOwner    *Owner
	currentListener Listener

	batchDepth     int
	pendingUpdates []Listener

	renderDepth int
}

// idle reports whether the context carries no state worth keeping.
func (c *trackingContext) idle() bool {
	return c.currentOwner == nil &&
		c.currentListener == nil &&
		c.batchDepth == 0 &&
		c.renderDepth == 0 &&
		len(c.pendingUpdates) == 0
}

// trackingContexts maps goroutine ids to their context. An entry lives only
// while its goroutine is inside WithOwner, WithListener, Batch or a render
// pass, so a host serving each request on a fresh goroutine does not
// accumulate entries.
var trackingContexts sync.Map

// getGoroutineID parses the id from the "goroutine <id> " stack header.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// lookupTrackingContext returns the current goroutine's context, or nil.
// Readers use it so that a plain signal read never allocates an entry.
func lookupTrackingContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// getTrackingContext returns the current goroutine's context, creating it
// if needed. Every caller that changes the context must pair it with
// releaseTrackingContext.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{gid: gid}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// releaseTrackingContext drops ctx once it is idle.
func releaseTrackingContext(ctx *trackingContext) {
	if ctx.idle() {
		trackingContexts.Delete(ctx.gid)
	}
}

// trackingContextCount is used by tests.
func trackingContextCount() int {
	n := 0
	trackingContexts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func getCurrentListener() Listener {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentListener
	}
	return nil
}

// setCurrentListener sets the current listener and returns the previous one.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	releaseTrackingContext(ctx)
	return old
}

func getCurrentOwner() *Owner {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentOwner
	}
	return nil
}

// setCurrentOwner sets the current owner and returns the previous one.
func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	releaseTrackingContext(ctx)
	return old
}

func getBatchDepth() int {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.batchDepth
	}
	return 0
}

// queuePendingUpdate defers l until the enclosing batch completes.
// Only called while a batch is open, so the context exists.
func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

func beginRender() {
	getTrackingContext().renderDepth++
}

func endRender() {
	ctx := lookupTrackingContext()
	if ctx == nil {
		return
	}
	if ctx.renderDepth > 0 {
		ctx.renderDepth--
	}
	releaseTrackingContext(ctx)
}

// isInRender reports whether an Owner render pass is active on this goroutine.
func isInRender() bool {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.renderDepth > 0
	}
	return false
}

// WithOwner runs fn with owner receiving the cells requested inside it.
//
//	WithOwner(owner, func() {
//	    owner.StartRender()
//	    defer owner.EndRender()
//	    cell := UseSignal[any]("bar") // stored in owner's next hook slot
//	})
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with l subscribed to every signal read inside it.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// CurrentOwner returns the owner set by WithOwner on this goroutine, or nil.
func CurrentOwner() *Owner {
	return getCurrentOwner()
}
