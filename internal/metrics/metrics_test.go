package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/gridview/internal/core"
)

var _ core.Observer = (*Metrics)(nil)

// =============================================================================
// Observer
// =============================================================================

func TestObserver(t *testing.T) {
	m := New(nil)

	m.ViewComputed("dealers", 2*time.Millisecond, 4)
	m.ViewComputed("dealers", time.Millisecond, 1)
	m.TableLoaded("dealers", time.Millisecond, nil)
	m.TableLoaded("policies", time.Millisecond, errors.New("connection refused"))
	m.CacheLookup("dealers", true)
	m.CacheLookup("dealers", false)
	m.CacheLookup("dealers", true)
	m.SessionsActive(3)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"views computed", testutil.ToFloat64(m.ViewsComputed.WithLabelValues("dealers")), 2},
		{"load ok", testutil.ToFloat64(m.TableLoads.WithLabelValues("dealers", "ok")), 1},
		{"load error", testutil.ToFloat64(m.TableLoads.WithLabelValues("policies", "error")), 1},
		{"cache hit", testutil.ToFloat64(m.CacheLookups.WithLabelValues("dealers", "hit")), 2},
		{"cache miss", testutil.ToFloat64(m.CacheLookups.WithLabelValues("dealers", "miss")), 1},
		{"sessions", testutil.ToFloat64(m.Sessions), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(m.ViewComputeSeconds); n != 1 {
		t.Errorf("compute histogram series = %d, want 1", n)
	}
}

// =============================================================================
// HTTP
// =============================================================================

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(nil)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tables/{key}/view", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "key") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/tables/dealers/view", "/api/tables/insureds/view", "/api/tables/missing/view"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	pattern := "/api/tables/{key}/view"
	if got := testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", pattern, "200")); got != 2 {
		t.Errorf("200 requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", pattern, "404")); got != 1 {
		t.Errorf("404 requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.RequestTotal); n != 2 {
		t.Errorf("request series = %d, want 2 (one per status)", n)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New(nil)
	m.SessionsActive(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "gridview_sessions_active 7") {
		t.Errorf("exposition missing session gauge:\n%s", body)
	}
}
