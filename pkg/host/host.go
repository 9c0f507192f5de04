package host

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/obsrv-dev/obsrv/pkg/obsrv"
	"github.com/obsrv-dev/obsrv/pkg/reactive"
)

// Config configures a Host.
type Config struct {
	// Address is the host:port to listen on.
	Address string

	// Indent is the default indentation of GET /store.
	Indent int

	// MetricsPath is the scrape path. Only mounted when Gatherer is set.
	MetricsPath string

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger is the host logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:7070",
		Indent:          2,
		MetricsPath:     "/metrics",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Host serves one live store.
type Host struct {
	config Config
	logger *slog.Logger

	desc obsrv.Description
	opts []obsrv.Option

	// mu serializes every access to the store and the render scope.
	mu      sync.Mutex
	owner   *reactive.Owner
	store   *obsrv.Store
	watcher *reactive.Watcher
	version uint64

	// dirty is set by the watcher when any cell changes.
	dirty atomic.Bool

	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New constructs the store described by desc inside a fresh reactive scope
// and prepares the HTTP routes. opts are passed to every construction; the
// host supplies the cell provider itself.
func New(desc obsrv.Description, config Config, opts ...obsrv.Option) (*Host, error) {
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.MetricsPath == "" {
		config.MetricsPath = defaults.MetricsPath
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	h := &Host{
		config: config,
		logger: config.Logger.With("component", "host"),
		desc:   desc,
		owner:  reactive.NewOwner(nil),
	}
	h.opts = append([]obsrv.Option{obsrv.WithLogger(config.Logger)}, opts...)
	h.opts = append(h.opts, obsrv.WithCells(obsrv.ScopeCells(h.owner)))

	h.watcher = reactive.NewWatcher(func() {
		h.dirty.Store(true)
	})
	h.owner.OnCleanup(h.watcher.Dispose)

	if err := h.render(); err != nil {
		h.owner.Dispose()
		return nil, err
	}

	h.hub = NewHub(h.logger, h.helloMessage)
	h.router = h.routes()
	return h, nil
}

// render constructs the store as one render pass of the host's scope and
// subscribes the watcher to every cell. Callers hold h.mu or own h
// exclusively.
func (h *Host) render() error {
	var (
		store *obsrv.Store
		err   error
	)
	h.owner.Render(func() {
		store, err = obsrv.New(h.desc, h.opts...)
	})
	if err != nil {
		return err
	}

	h.watcher.Watch(func() {
		store.GetJS()
	})
	h.store = store
	return nil
}

// View runs fn with shared access to the live store. Writes inside fn are
// not committed; use Update for that.
func (h *Host) View(fn func(*obsrv.Store) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.store)
}

// Update runs fn with exclusive access to the live store. If fn changed any
// cell the store is re-rendered and one snapshot is pushed to clients after
// fn returns, whether fn failed or panicked. A panic is re-raised once the
// lock is released.
func (h *Host) Update(fn func(*obsrv.Store) error) (err error) {
	h.mu.Lock()
	var (
		msg     Message
		changed bool
	)
	defer func() {
		h.mu.Unlock()
		if changed {
			h.hub.Broadcast(msg)
		}
	}()
	defer func() {
		msg, changed = h.commitLocked()
	}()

	h.store.Batch(func() {
		err = fn(h.store)
	})
	return err
}

func (h *Host) commitLocked() (Message, bool) {
	if !h.dirty.Swap(false) {
		return Message{}, false
	}
	if err := h.render(); err != nil {
		// The description is validated at New and does not change.
		h.logger.Error("re-render failed", "error", err)
		return Message{}, false
	}
	h.version++
	h.logger.Debug("store re-rendered", "version", h.version)
	return h.snapshotLocked(MessageSnapshot), true
}

func (h *Host) snapshotLocked(typ MessageType) Message {
	data, err := h.store.GetJSON(0)
	if err != nil {
		h.logger.Error("encode snapshot", "error", err)
		data = "{}"
	}
	return Message{Type: typ, Version: h.version, Data: json.RawMessage(data)}
}

func (h *Host) helloMessage() Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked(MessageHello)
}

// Version returns the number of committed changes.
func (h *Host) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Hub returns the websocket hub.
func (h *Host) Hub() *Hub {
	return h.hub
}

// Handler returns the HTTP handler for the host's routes.
func (h *Host) Handler() http.Handler {
	return h.router
}

// ServeHTTP implements http.Handler.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until ctx is done or the server
// fails.
func (h *Host) Run(ctx context.Context) error {
	h.httpServer = &http.Server{
		Addr:              h.config.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Error channel for ListenAndServe
	errCh := make(chan error, 1)

	go func() {
		h.logger.Info("host starting", "address", h.config.Address)
		errCh <- h.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		h.logger.Info("shutting down...")
		return h.Shutdown(context.Background())
	}
}

// Shutdown closes websocket clients, stops the HTTP server and disposes
// the reactive scope.
func (h *Host) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.ShutdownTimeout)
	defer cancel()

	h.hub.Close()

	if h.httpServer != nil {
		if err := h.httpServer.Shutdown(ctx); err != nil {
			h.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	h.mu.Lock()
	h.owner.Dispose()
	h.mu.Unlock()

	h.logger.Info("host shutdown complete")
	return nil
}
