package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DebugMode enables dev-time validation such as checking that every render
// pass requests the same number of hook slots.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// Owner is the scope a store's cells live in. Cells requested through hook
// slots keep their identity across render passes for the life of the Owner.
// Disposing an Owner disposes its children first, then runs its cleanups.
type Owner struct {
	id     uint64
	parent *Owner

	// mu guards children and cleanups.
	mu       sync.Mutex
	children []*Owner
	cleanups []func()

	disposed atomic.Bool

	// Hook slots are only touched from the goroutine running the render pass.
	hookSlots   []any
	hookSlotIdx int
	renderCount int
}

// NewOwner returns an Owner attached to parent, or a root Owner if parent
// is nil.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, o)
		parent.mu.Unlock()
	}
	return o
}

func (o *Owner) ID() uint64 { return o.id }

// Parent returns nil for a root Owner.
func (o *Owner) Parent() *Owner { return o.parent }

func (o *Owner) IsDisposed() bool { return o.disposed.Load() }

func (o *Owner) detach(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run on Dispose. On a disposed Owner fn runs
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if !o.disposed.Load() {
		o.cleanups = append(o.cleanups, fn)
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	fn()
}

// Dispose tears the scope down: children newest first, then cleanups in
// reverse registration order. A second call does nothing.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	if o.parent != nil {
		o.parent.detach(o)
	}

	o.mu.Lock()
	children, cleanups := o.children, o.cleanups
	o.children, o.cleanups = nil, nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	o.hookSlots = nil
}

// =============================================================================
// Render passes and hook slots
// =============================================================================

// StartRender is called at the beginning of a render pass.
// It resets the hook slot index so the Nth slot request of this pass
// returns the value stored by the Nth request of the first pass.
func (o *Owner) StartRender() {
	beginRender()
	o.hookSlotIdx = 0
}

// EndRender is called at the end of a render pass.
// In debug mode, it panics if this pass requested fewer slots than the first.
func (o *Owner) EndRender() {
	endRender()

	if o.renderCount == 0 {
		o.renderCount = 1
		return
	}
	if DebugMode && o.hookSlotIdx < len(o.hookSlots) {
		panic(fmt.Sprintf("[OBSRV O901] Hook order changed: expected %d hooks, got %d",
			len(o.hookSlots), o.hookSlotIdx))
	}
}

// Render runs fn as a render pass with o as the current owner.
func (o *Owner) Render(fn func()) {
	WithOwner(o, func() {
		o.StartRender()
		defer o.EndRender()
		fn()
	})
}

// UseHookSlot returns the stored value for the current hook slot, or nil
// if this slot has not been filled yet. The caller fills an empty slot
// with SetHookSlot.
//
//	func useThing() *Thing {
//	    if slot := owner.UseHookSlot(); slot != nil {
//	        return slot.(*Thing)
//	    }
//	    t := &Thing{}
//	    owner.SetHookSlot(t)
//	    return t
//	}
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}

	if DebugMode && o.renderCount > 0 {
		panic(fmt.Sprintf("[OBSRV O901] Hook order changed: extra hook at index %d", idx))
	}
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil.
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}

// HookSlotCount returns the number of filled hook slots.
func (o *Owner) HookSlotCount() int {
	return len(o.hookSlots)
}
