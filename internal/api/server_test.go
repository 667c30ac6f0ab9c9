// internal/api/server_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/finboard/internal/api/handler/web"
	"github.com/newthinker/finboard/internal/api/response"
	"github.com/newthinker/finboard/internal/api/session"
	"github.com/newthinker/finboard/internal/backend"
	"github.com/newthinker/finboard/internal/config"
	"github.com/newthinker/finboard/internal/metrics"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, reg *metrics.Registry) *Server {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(api.Close)

	var gauge session.Gauge
	if reg != nil {
		gauge = reg
	}

	srv, err := NewServer(Config{
		Host:        "localhost",
		Port:        0,
		MetricsPath: "/metrics",
		Version:     "test",
	}, Dependencies{
		Web: web.Deps{
			Backend:   backend.New(backend.Config{BaseURL: api.URL}, nil),
			Dashboard: config.Defaults().Dashboard,
		},
		Sessions: session.NewStore(10, time.Hour, gauge),
		Metrics:  reg,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}

	var resp struct {
		Data response.Health `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if resp.Data.Status != "ok" || resp.Data.Version != "test" {
		t.Errorf("unexpected health payload %+v", resp.Data)
	}
}

func TestServer_HealthHasNoSession(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Error("health check should not start a session")
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	srv := newTestServer(t, reg)

	// a page load creates a session and records a labeled request
	req := httptest.NewRequest("GET", "/stock", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /stock, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "finboard_sessions_active 1") {
		t.Error("expected one active session in metrics")
	}
	if !strings.Contains(body, `path="GET /stock"`) {
		t.Error("expected request labeled by route pattern")
	}
}

func TestServer_RootRedirects(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", w.Code)
	}
}

func TestServer_RequiresSessions(t *testing.T) {
	if _, err := NewServer(Config{}, Dependencies{}, nil); err == nil {
		t.Error("expected error without session store")
	}
}
