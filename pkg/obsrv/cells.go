package obsrv

import "github.com/obsrv-dev/obsrv/pkg/reactive"

// Cell is a single reactive value. Set commits the value and notifies the
// host, which is expected to re-render.
type Cell interface {
	Get() any
	Set(value any)
}

// CellProvider allocates cells for a store. Providers backed by a scope
// must return the same cell for the Nth request of every construction pass
// so that cell identity and values survive re-construction.
type CellProvider interface {
	UseCell(initial any) Cell
}

// CellProviderFunc adapts a function to CellProvider.
type CellProviderFunc func(initial any) Cell

// UseCell implements CellProvider.
func (f CellProviderFunc) UseCell(initial any) Cell {
	return f(initial)
}

// ScopeCells returns a provider that stores cells in owner's hook slots.
// Construct the store between owner.StartRender and owner.EndRender (or
// inside owner.Render) so the slot index starts from zero on every pass.
func ScopeCells(owner *reactive.Owner) CellProvider {
	return CellProviderFunc(func(initial any) Cell {
		return reactive.UseSignalIn[any](owner, initial)
	})
}

// FreeCells returns a provider that allocates unowned signals.
func FreeCells() CellProvider {
	return CellProviderFunc(func(initial any) Cell {
		return reactive.NewSignal[any](initial)
	})
}

// contextCells is the default provider: hook-slot signals of the current
// owner during a render pass, unowned signals otherwise.
func contextCells() CellProvider {
	return CellProviderFunc(func(initial any) Cell {
		return reactive.UseSignal[any](initial)
	})
}
