package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/obsrv-dev/obsrv/pkg/obsrv"
	"github.com/obsrv-dev/obsrv/pkg/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDescription() obsrv.Description {
	return obsrv.Description{
		Data: obsrv.Data{
			"foo":   "bar",
			"count": 1,
			"address": obsrv.Data{
				"city": "Springfield",
			},
		},
		Computeds: map[string]obsrv.ComputedFunc{
			"fizz": func(d *obsrv.Node) any {
				return fmt.Sprintf("%v-computed", d.Value("foo"))
			},
		},
		Actions: map[string]obsrv.ActionFunc{
			"biz": func(d *obsrv.Node, args ...any) (any, error) {
				return fmt.Sprintf("return %v from action", d.Value("foo")), nil
			},
			"add": func(d *obsrv.Node, args ...any) (any, error) {
				n := d.Value("count").(int)
				for _, a := range args {
					n += a.(int)
				}
				return n, d.Set("count", n)
			},
			"fail": func(d *obsrv.Node, args ...any) (any, error) {
				return nil, errors.New("nope")
			},
		},
	}
}

func newHost(t *testing.T, opts ...obsrv.Option) *Host {
	t.Helper()
	h, err := New(testDescription(), Config{Logger: quietLogger(), Indent: 0}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsInvalidDescription(t *testing.T) {
	_, err := New(obsrv.Description{}, Config{Logger: quietLogger()})
	if !errors.Is(err, obsrv.ErrMissingData) {
		t.Errorf("New() error = %v, want ErrMissingData", err)
	}
}

func TestSnapshotRoute(t *testing.T) {
	h := newHost(t)

	rec := do(t, h, "GET", "/store", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := `{"address":{"city":"Springfield"},"count":1,"foo":"bar"}`
	if rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}

	rec = do(t, h, "GET", "/store?indent=2", "")
	if !strings.Contains(rec.Body.String(), "\n  \"count\": 1") {
		t.Errorf("indented body = %s", rec.Body.String())
	}

	rec = do(t, h, "GET", "/store?indent=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad indent status = %d, want 400", rec.Code)
	}
}

func TestLookupRoute(t *testing.T) {
	h := newHost(t)

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/store/foo", http.StatusOK, `"bar"`},
		{"/store/address/city", http.StatusOK, `"Springfield"`},
		{"/store/address", http.StatusOK, `{"city":"Springfield"}`},
		{"/store/missing", http.StatusNotFound, ""},
		{"/store/foo/deeper", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, "GET", tt.target, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && strings.TrimSpace(rec.Body.String()) != tt.body {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestWriteRouteRerenders(t *testing.T) {
	h := newHost(t)

	var before *obsrv.Store
	h.View(func(s *obsrv.Store) error { before = s; return nil })

	rec := do(t, h, "PUT", "/store/foo", `"not-bar"`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if h.Version() != 1 {
		t.Errorf("Version() = %d, want 1", h.Version())
	}

	var after *obsrv.Store
	h.View(func(s *obsrv.Store) error { after = s; return nil })
	if before == after {
		t.Error("store was not re-constructed after a write")
	}

	rec = do(t, h, "GET", "/computeds/fizz", "")
	var got struct{ Value string }
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Value != "not-bar-computed" {
		t.Errorf("fizz = %q, want not-bar-computed", got.Value)
	}

	// Writing the same value changes nothing.
	do(t, h, "PUT", "/store/foo", `"not-bar"`)
	if h.Version() != 1 {
		t.Errorf("Version() after no-op write = %d, want 1", h.Version())
	}
}

func TestWriteRouteErrors(t *testing.T) {
	h := newHost(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown field", "/store/nope", `1`, http.StatusNotFound},
		{"group", "/store/address", `{}`, http.StatusNotFound},
		{"bad json", "/store/foo", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "PUT", tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
	if h.Version() != 0 {
		t.Errorf("Version() = %d, want 0 after failed writes", h.Version())
	}
}

func TestReservedPathsRejected(t *testing.T) {
	h := newHost(t)

	for _, name := range []string{"getJSON", "getJS", "computeds", "actions", "_setters", "address/getJSON"} {
		if rec := do(t, h, "PUT", "/store/"+name, `"x"`); rec.Code != http.StatusNotFound {
			t.Errorf("PUT /store/%s status = %d, want 404", name, rec.Code)
		}
		if rec := do(t, h, "GET", "/store/"+name, ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET /store/%s status = %d, want 404", name, rec.Code)
		}
	}

	rec := do(t, h, "GET", "/store", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"foo":"bar"`) {
		t.Errorf("GET /store = %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, "GET", "/computeds", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `["fizz"]` {
		t.Errorf("GET /computeds = %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, "GET", "/actions", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /actions status = %d", rec.Code)
	}
}

func TestUpdateReleasesLockOnPanic(t *testing.T) {
	h := newHost(t)

	// add asserts int arguments, so a string argument panics inside the action.
	rec := do(t, h, "POST", "/actions/add", `["x"]`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panicking action status = %d, want 500", rec.Code)
	}

	done := make(chan int, 1)
	go func() {
		done <- do(t, h, "GET", "/store", "").Code
	}()
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Errorf("GET /store after panic = %d, want 200", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("store still locked after a panicking action")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Update should re-raise the panic")
			}
		}()
		h.Update(func(s *obsrv.Store) error {
			if err := s.Set("foo", "mid-panic"); err != nil {
				return err
			}
			panic("boom")
		})
	}()
	if got := h.Version(); got != 1 {
		t.Errorf("Version() = %d, want 1: the write before the panic is committed", got)
	}
	rec = do(t, h, "GET", "/store/foo", "")
	if strings.TrimSpace(rec.Body.String()) != `"mid-panic"` {
		t.Errorf("foo = %s, want \"mid-panic\"", rec.Body.String())
	}
}

func TestComputedAndActionRoutes(t *testing.T) {
	h := newHost(t)

	rec := do(t, h, "GET", "/computeds", "")
	if strings.TrimSpace(rec.Body.String()) != `["fizz"]` {
		t.Errorf("computed names = %s", rec.Body.String())
	}

	rec = do(t, h, "GET", "/computeds/none", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown computed status = %d, want 404", rec.Code)
	}

	rec = do(t, h, "GET", "/actions", "")
	if strings.TrimSpace(rec.Body.String()) != `["add","biz","fail"]` {
		t.Errorf("action names = %s", rec.Body.String())
	}

	rec = do(t, h, "POST", "/actions/biz", "")
	var biz struct{ Result string }
	json.Unmarshal(rec.Body.Bytes(), &biz)
	if biz.Result != "return bar from action" {
		t.Errorf("biz result = %q", biz.Result)
	}

	rec = do(t, h, "POST", "/actions/add", `[2, 3]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, "GET", "/store/count", "")
	if strings.TrimSpace(rec.Body.String()) != "6" {
		t.Errorf("count = %s, want 6", rec.Body.String())
	}

	tests := []struct {
		target string
		body   string
		status int
	}{
		{"/actions/none", "", http.StatusNotFound},
		{"/actions/fail", "", http.StatusUnprocessableEntity},
		{"/actions/add", `{"a": 1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, h, "POST", tt.target, tt.body)
		if rec.Code != tt.status {
			t.Errorf("POST %s status = %d, want %d", tt.target, rec.Code, tt.status)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(testDescription(),
		Config{Logger: quietLogger(), Gatherer: reg},
		obsrv.WithObserver(telemetry.Prometheus(telemetry.WithRegistry(reg))),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	do(t, h, "POST", "/actions/biz", "")

	rec := do(t, h, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `obsrv_store_actions_total{name="biz",status="success"} 1`) {
		t.Errorf("metrics output missing action counter:\n%s", rec.Body.String())
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	h := newHost(t)
	if rec := do(t, h, "GET", "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a gatherer", rec.Code)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestWebSocketPush(t *testing.T) {
	h := newHost(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Hub().Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	hello := readMessage(t, conn)
	if hello.Type != MessageHello || hello.ClientID == "" {
		t.Errorf("hello = %+v, want hello with client id", hello)
	}
	if hello.Version != 0 {
		t.Errorf("hello version = %d, want 0", hello.Version)
	}

	if err := h.Update(func(s *obsrv.Store) error {
		return s.Set("foo", "pushed")
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != MessageSnapshot || msg.Version != 1 {
		t.Errorf("push = %+v, want snapshot version 1", msg)
	}
	var data map[string]any
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("decode push data: %v", err)
	}
	if data["foo"] != "pushed" {
		t.Errorf("pushed foo = %v, want pushed", data["foo"])
	}
}

func TestUpdateBatchesWrites(t *testing.T) {
	h := newHost(t)

	err := h.Update(func(s *obsrv.Store) error {
		if err := s.Set("foo", "a"); err != nil {
			return err
		}
		return s.SetPath("address.city", "Shelbyville")
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if h.Version() != 1 {
		t.Errorf("Version() = %d, want 1 for one batch", h.Version())
	}
}
