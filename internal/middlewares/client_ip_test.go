package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func runClientIP(t *testing.T, remoteAddr string, headers map[string]string) string {
	t.Helper()

	var rewritten string
	handler := ClientIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rewritten = r.RemoteAddr
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/cooldown", nil)
	req.RemoteAddr = remoteAddr
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	handler.ServeHTTP(httptest.NewRecorder(), req)

	return rewritten
}

func TestClientIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct connection keeps remote addr",
			remoteAddr: "203.0.113.1:54321",
			want:       "203.0.113.1:54321",
		},
		{
			name:       "missing port gets a zero port",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1:0",
		},
		{
			name:       "true-client-ip replaces the proxy hop",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"True-Client-IP": "198.51.100.1"},
			want:       "198.51.100.1:12345",
		},
		{
			name:       "x-real-ip replaces the proxy hop",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2:12345",
		},
		{
			name:       "x-forwarded-for takes the first hop",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": " 198.51.100.3 , 10.0.0.2, 10.0.0.3"},
			want:       "198.51.100.3:12345",
		},
		{
			name:       "header priority",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"True-Client-IP":  "198.51.100.4",
				"X-Real-IP":       "198.51.100.5",
				"X-Forwarded-For": "198.51.100.6",
			},
			want: "198.51.100.4:12345",
		},
		{
			name:       "malformed header falls through to the next",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"True-Client-IP": "not-an-ip",
				"X-Real-IP":      "198.51.100.7",
			},
			want: "198.51.100.7:12345",
		},
		{
			name:       "all headers malformed falls back to remote addr",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"True-Client-IP":  "nope",
				"X-Real-IP":       "also nope",
				"X-Forwarded-For": "still nope",
			},
			want: "10.0.0.1:12345",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "[2001:db8::1]:443",
		},
		{
			name:       "ipv6 header is bracketed on rewrite",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "2001:db8::2"},
			want:       "[2001:db8::2]:12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runClientIP(t, tt.remoteAddr, tt.headers); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPUnresolvable(t *testing.T) {
	// Nothing parseable anywhere: the middleware must leave RemoteAddr alone
	// rather than rewrite it to an empty host.
	if got := runClientIP(t, "unix-socket", nil); got != "unix-socket" {
		t.Errorf("RemoteAddr = %q, want untouched %q", got, "unix-socket")
	}
}

func TestClientIPNormalizesForThrottleKeys(t *testing.T) {
	// The throttle splits RemoteAddr and buckets on the host, so equivalent
	// textual forms of one address must rewrite to a single canonical form.
	first := runClientIP(t, "10.0.0.1:1000", map[string]string{"X-Real-IP": "2001:db8:0:0::8"})
	second := runClientIP(t, "10.0.0.1:2000", map[string]string{"X-Real-IP": "2001:db8::8"})

	firstHost := first[:len(first)-len(":1000")]
	secondHost := second[:len(second)-len(":2000")]

	if firstHost != secondHost {
		t.Errorf("equivalent addresses rewrote to different hosts: %q vs %q", firstHost, secondHost)
	}
}
