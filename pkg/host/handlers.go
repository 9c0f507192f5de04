package host

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
	"github.com/obsrv-dev/obsrv/pkg/describe"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

// maxBodyBytes caps request bodies for writes and action calls.
const maxBodyBytes = 1 << 20

func (h *Host) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/store", h.handleSnapshot)
	r.Get("/store/*", h.handleLookup)
	r.Put("/store/*", h.handleWrite)

	r.Get("/computeds", h.handleComputedNames)
	r.Get("/computeds/{name}", h.handleComputed)

	r.Get("/actions", h.handleActionNames)
	r.Post("/actions/{name}", h.handleAction)

	r.Get("/ws", h.hub.HandleWebSocket)

	if h.config.Gatherer != nil {
		r.Handle(h.config.MetricsPath, promhttp.HandlerFor(h.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs each request at debug level.
func (h *Host) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *Host) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	indent := h.config.Indent
	if s := r.URL.Query().Get("indent"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("indent must be an integer"))
			return
		}
		indent = n
	}

	var body string
	err := h.View(func(s *obsrv.Store) error {
		var err error
		body, err = s.GetJSON(indent)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (h *Host) handleLookup(w http.ResponseWriter, r *http.Request) {
	path := fieldPath(r)

	var value any
	err := h.View(func(s *obsrv.Store) error {
		v, err := s.Lookup(path)
		if err != nil {
			return err
		}
		if group, ok := v.(*obsrv.Node); ok {
			v = group.Snapshot()
		}
		value = v
		return nil
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (h *Host) handleWrite(w http.ResponseWriter, r *http.Request) {
	path := fieldPath(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value, err := describe.ParseValue(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err = h.Update(func(s *obsrv.Store) error {
		return s.SetPath(path, value)
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Host) handleComputedNames(w http.ResponseWriter, r *http.Request) {
	var names []string
	h.View(func(s *obsrv.Store) error {
		names = s.Computeds().Names()
		return nil
	})
	writeJSON(w, http.StatusOK, names)
}

func (h *Host) handleComputed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var value any
	err := h.View(func(s *obsrv.Store) error {
		var err error
		value, err = s.Computeds().GetContext(r.Context(), name)
		return err
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": value})
}

func (h *Host) handleActionNames(w http.ResponseWriter, r *http.Request) {
	var names []string
	h.View(func(s *obsrv.Store) error {
		names = s.Actions().Names()
		return nil
	})
	writeJSON(w, http.StatusOK, names)
}

func (h *Host) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args, err := readArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var result any
	err = h.Update(func(s *obsrv.Store) error {
		var err error
		result, err = s.Actions().CallContext(r.Context(), name, args...)
		return err
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "result": result})
}

// readArgs decodes an optional JSON array body into action arguments.
func readArgs(r *http.Request) ([]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	v, err := describe.ParseValue(body)
	if err != nil {
		return nil, err
	}
	args, ok := v.([]any)
	if !ok {
		return nil, errors.New("action arguments must be a JSON array")
	}
	return args, nil
}

// fieldPath turns the wildcard segment "address/city" into "address.city".
func fieldPath(r *http.Request) string {
	return strings.ReplaceAll(strings.Trim(chi.URLParam(r, "*"), "/"), "/", ".")
}

// statusFor maps store errors to HTTP status codes. Errors that are not
// store errors come from action code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, obsrv.ErrUnknownField),
		errors.Is(err, obsrv.ErrUnknownComputed),
		errors.Is(err, obsrv.ErrUnknownAction):
		return http.StatusNotFound
	}
	var oe *oerrors.Error
	if errors.As(err, &oe) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var oe *oerrors.Error
	if errors.As(err, &oe) {
		io.WriteString(w, oe.FormatJSON())
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}
