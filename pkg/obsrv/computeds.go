package obsrv

import (
	"context"
	"sort"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
)

// Computeds is the read-through view over a store's computed definitions.
// It holds a reference to the root node, never a copy of its data.
type Computeds struct {
	defs map[string]ComputedFunc
	root *Node
	env  *env
}

func newComputeds(defs map[string]ComputedFunc, root *Node, e *env) *Computeds {
	if defs == nil {
		defs = map[string]ComputedFunc{}
	}
	return &Computeds{defs: defs, root: root, env: e}
}

// Get evaluates the named computed against the current data. There is no
// caching: every call runs the function again.
func (c *Computeds) Get(name string) (any, error) {
	return c.GetContext(context.Background(), name)
}

// GetContext is Get with a context passed to observers.
func (c *Computeds) GetContext(ctx context.Context, name string) (any, error) {
	if c.root == nil {
		return nil, nil
	}

	fn, ok := c.defs[name]
	if !ok {
		c.env.logger.Warn("read of unknown computed", "name", name)
		return nil, oerrors.New("O102").WithDetailf("no computed named %q", name)
	}

	return c.env.observer.ObserveComputed(ctx, name, func() (any, error) {
		return fn(c.root), nil
	})
}

// Names returns the defined computed names in sorted order.
func (c *Computeds) Names() []string {
	return sortedNames(c.defs)
}

func sortedNames[F any](m map[string]F) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
