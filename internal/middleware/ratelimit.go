package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type window struct {
	hits    int
	resetAt time.Time
}

// RateLimit is a fixed-window per-IP limiter. Enough to keep a misbehaving
// dashboard from hammering the donation endpoint.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var (
		mu      sync.Mutex
		windows = make(map[string]*window)
	)

	take := func(ip string, now time.Time) (ok bool, resetAt time.Time) {
		mu.Lock()
		defer mu.Unlock()

		w, found := windows[ip]
		if !found || now.After(w.resetAt) {
			w = &window{resetAt: now.Add(per)}
			windows[ip] = w
		}
		if w.hits >= limit {
			return false, w.resetAt
		}
		w.hits++
		return true, w.resetAt
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, resetAt := take(clientIPForRateLimit(r), time.Now())
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPForRateLimit prefers the first valid X-Forwarded-For hop so all
// clients behind the ingress proxy are not lumped into one bucket.
func clientIPForRateLimit(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(part); ip != "" && net.ParseIP(ip) != nil {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
