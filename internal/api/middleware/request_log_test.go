package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apiContext "oportunidades/internal/api/context"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestLogger(t *testing.T) {
	buf := captureLog(t)

	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(apiContext.RequestID).(string)
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/favoritos", nil))

	id := rr.Header().Get("X-Request-ID")
	if id == "" || id != seen {
		t.Fatalf("request id header %q, context %q", id, seen)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var access map[string]interface{}
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatal(err)
	}
	if access["request_id"] != id || access["status"] != float64(201) || access["bytes"] != float64(2) || access["path"] != "/api/favoritos" {
		t.Errorf("unexpected access line: %v", access)
	}
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	captureLog(t)
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("got %q", rr.Header().Get("X-Request-ID"))
	}
}

func TestRecoverer(t *testing.T) {
	captureLog(t)
	handler := Recoverer(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("boom")) {
		t.Error("panic value leaked to the client")
	}
}
