package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
)

func newTestThrottleStore(rps float64, burst int) *ThrottleStore {
	return NewThrottleStore(&config.Config{
		Throttle: config.ThrottleConfig{
			Enabled: true,
			RPS:     rps,
			Burst:   burst,
		},
	})
}

func TestThrottleStoreAllow(t *testing.T) {
	store := newTestThrottleStore(1, 2)

	if !store.Allow("203.0.113.1") {
		t.Error("first request should be allowed")
	}

	if !store.Allow("203.0.113.1") {
		t.Error("second request should be allowed within burst")
	}

	if store.Allow("203.0.113.1") {
		t.Error("third request should exceed the burst")
	}

	if !store.Allow("203.0.113.2") {
		t.Error("a different client should have its own bucket")
	}
}

func TestThrottleStoreCleanup(t *testing.T) {
	store := newTestThrottleStore(1, 1)

	store.Allow("203.0.113.1")
	store.Allow("203.0.113.2")

	if got := store.Size(); got != 2 {
		t.Fatalf("size = %d, want 2", got)
	}

	store.Cleanup(time.Now())

	if got := store.Size(); got != 2 {
		t.Errorf("cleanup removed fresh buckets, size = %d, want 2", got)
	}

	store.Cleanup(time.Now().Add(10 * time.Minute))

	if got := store.Size(); got != 0 {
		t.Errorf("cleanup kept idle buckets, size = %d, want 0", got)
	}
}

func TestThrottleMiddleware(t *testing.T) {
	store := newTestThrottleStore(1, 1)

	handler := ThrottleMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/cooldown", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := request("203.0.113.1:4000"); rec.Code != http.StatusOK {
		t.Errorf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec := request("203.0.113.1:4000")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	if got := rec.Header().Get("Retry-After"); got == "" {
		t.Error("throttled response missing Retry-After header")
	}

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("throttled response content type = %q, want application/json", got)
	}

	// The port must not contribute to the key.
	if rec := request("203.0.113.1:5000"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("same IP on a new port status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	if rec := request("203.0.113.9:4000"); rec.Code != http.StatusOK {
		t.Errorf("different IP status = %d, want %d", rec.Code, http.StatusOK)
	}
}
