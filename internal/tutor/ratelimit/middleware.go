package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/server/respond"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// Middleware rejects requests over the limit with 429. A limiter error is
// logged and the request is allowed.
func Middleware(l Limiter, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Round(time.Second).Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			ok, err := l.Allow(r.Context(), key)
			if err != nil {
				logx.Warn().Err(err).Str("client", key).Msg("rate limiter unavailable")
			}
			if !ok && err == nil {
				w.Header().Set("Retry-After", retryAfter)
				respond.WriteError(w, http.StatusTooManyRequests,
					"Too many requests", "Please wait a minute before making more requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey is the RemoteAddr host. Forwarding headers are not read here;
// the router's RealIP middleware is the one place that trusts them.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "anonymous"
	}
	return normalizeIP(host)
}

func normalizeIP(raw string) string {
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
