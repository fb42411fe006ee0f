package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/food-items", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/food-items", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/login", http.StatusUnauthorized, time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/food-items", "200")); got != 2 {
		t.Fatalf("GET /food-items = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/login", "401")); got != 1 {
		t.Fatalf("POST /login 401 = %v, want 1", got)
	}
}

func TestObserveStoreOperation(t *testing.T) {
	m := New()
	m.ObserveStoreOperation("cart.json", "update", time.Millisecond, nil)
	m.ObserveStoreOperation("cart.json", "update", time.Millisecond, errors.New("disk full"))
	m.ObserveStoreOperation("cart.json", "update", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.storeOperations.WithLabelValues("cart.json", "update", "ok")); got != 2 {
		t.Fatalf("ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.storeOperations.WithLabelValues("cart.json", "update", "error")); got != 1 {
		t.Fatalf("error = %v, want 1", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveStoreOperation("users.json", "read", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"foodcart_store_operations_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("output missing %s", want)
		}
	}
}
