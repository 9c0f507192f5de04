package obsrv

import (
	"context"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
)

// BoundAction is an action with the store's data already bound.
type BoundAction func(args ...any) (any, error)

// Actions is the read-through view over a store's action definitions.
type Actions struct {
	defs map[string]ActionFunc
	root *Node
	env  *env
}

func newActions(defs map[string]ActionFunc, root *Node, e *env) *Actions {
	if defs == nil {
		defs = map[string]ActionFunc{}
	}
	return &Actions{defs: defs, root: root, env: e}
}

// Get returns the named action bound to the root node. The binding happens
// here, at read time, so the action always sees the current data.
func (a *Actions) Get(name string) (BoundAction, error) {
	return a.bind(context.Background(), name)
}

// Call looks up and invokes the named action.
func (a *Actions) Call(name string, args ...any) (any, error) {
	return a.CallContext(context.Background(), name, args...)
}

// CallContext is Call with a context passed to observers.
func (a *Actions) CallContext(ctx context.Context, name string, args ...any) (any, error) {
	fn, err := a.bind(ctx, name)
	if err != nil || fn == nil {
		return nil, err
	}
	return fn(args...)
}

// Names returns the defined action names in sorted order.
func (a *Actions) Names() []string {
	return sortedNames(a.defs)
}

func (a *Actions) bind(ctx context.Context, name string) (BoundAction, error) {
	if a.root == nil {
		return nil, nil
	}

	fn, ok := a.defs[name]
	if !ok {
		a.env.logger.Warn("call of unknown action", "name", name)
		return nil, oerrors.New("O103").WithDetailf("no action named %q", name)
	}

	root := a.root
	return func(args ...any) (any, error) {
		return a.env.observer.ObserveAction(ctx, name, func() (any, error) {
			return fn(root, args...)
		})
	}, nil
}
