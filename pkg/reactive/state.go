package reactive

// UseSignal returns a signal that keeps its identity across render passes of
// the current owner. Outside a render pass (or without an owner) it behaves
// like NewSignal.
//
// initial is only used the first time the slot is filled; later passes
// return the stored signal with whatever value it holds now.
func UseSignal[T any](initial T) *Signal[T] {
	owner := getCurrentOwner()
	if owner == nil || !isInRender() {
		return NewSignal(initial)
	}
	return UseSignalIn(owner, initial)
}

// UseSignalIn is like UseSignal but with an explicit owner. The owner's hook
// slot index advances on every call, so callers must request signals in the
// same order on every pass, starting from StartRender.
func UseSignalIn[T any](owner *Owner, initial T) *Signal[T] {
	if owner == nil {
		return NewSignal(initial)
	}

	if slot := owner.UseHookSlot(); slot != nil {
		sig, ok := slot.(*Signal[T])
		if !ok {
			panic("reactive: hook slot type mismatch for Signal")
		}
		return sig
	}

	sig := NewSignal(initial)
	owner.SetHookSlot(sig)
	return sig
}
