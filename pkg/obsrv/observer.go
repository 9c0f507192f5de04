package obsrv

import "context"

// Observer wraps the store's runtime operations. Each method must call next
// exactly once and return its result; implementations add timing, metrics
// or tracing around it.
type Observer interface {
	ObserveWrite(ctx context.Context, path string, next func() error) error
	ObserveComputed(ctx context.Context, name string, next func() (any, error)) (any, error)
	ObserveAction(ctx context.Context, name string, next func() (any, error)) (any, error)
}

// observerChain applies observers in order; the first is outermost.
type observerChain []Observer

func (c observerChain) ObserveWrite(ctx context.Context, path string, next func() error) error {
	if len(c) == 0 {
		return next()
	}
	return c[0].ObserveWrite(ctx, path, func() error {
		return c[1:].ObserveWrite(ctx, path, next)
	})
}

func (c observerChain) ObserveComputed(ctx context.Context, name string, next func() (any, error)) (any, error) {
	if len(c) == 0 {
		return next()
	}
	return c[0].ObserveComputed(ctx, name, func() (any, error) {
		return c[1:].ObserveComputed(ctx, name, next)
	})
}

func (c observerChain) ObserveAction(ctx context.Context, name string, next func() (any, error)) (any, error) {
	if len(c) == 0 {
		return next()
	}
	return c[0].ObserveAction(ctx, name, func() (any, error) {
		return c[1:].ObserveAction(ctx, name, next)
	})
}
