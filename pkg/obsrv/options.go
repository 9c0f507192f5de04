package obsrv

import "log/slog"

// Option configures a store.
type Option func(*options)

type options struct {
	cells     CellProvider
	logger    *slog.Logger
	observers []Observer
}

// WithCells sets the provider used to allocate one cell per leaf.
// Defaults to hook-slot signals of the current reactive owner.
func WithCells(p CellProvider) Option {
	return func(o *options) {
		o.cells = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver adds observers around writes, computed reads and action
// calls. Observers from repeated calls accumulate.
func WithObserver(obs ...Observer) Option {
	return func(o *options) {
		for _, ob := range obs {
			if ob != nil {
				o.observers = append(o.observers, ob)
			}
		}
	}
}

// env is shared by every node of one store.
type env struct {
	logger   *slog.Logger
	observer observerChain
}

func buildOptions(opts []Option) (options, *env) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cells == nil {
		o.cells = contextCells()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, &env{
		logger:   o.logger.With("component", "obsrv"),
		observer: observerChain(o.observers),
	}
}
