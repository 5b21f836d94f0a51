package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sqlguard/sqlguard/internal/httpapi/apierrors"
)

type contextKey string

// requestIDContextKey is distinct from internal/logging's CallIDKey: the
// call ID correlates a validate() call's internal log lines, the request
// ID here identifies the HTTP request itself and is what the JSON error
// body and X-Request-ID header report to the client.
const requestIDContextKey contextKey = "sqlguard_request_id"

const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware generates or extracts a request ID, adapted from
// internal/api/middleware's RequestIDMiddleware.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r)
	})
}

// requestIDFrom extracts the request ID requestIDMiddleware attached.
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// rateLimiter is a per-client token bucket, adapted from
// internal/api/middleware.RateLimiter, scoped down to the one dimension
// this API needs (client address: X-Forwarded-For, then X-Real-IP, then
// the remote address; there is no API-key concept here).
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{limiters: make(map[string]*rate.Limiter), limit: rate.Limit(rps), burst: burst}
}

func (rl *rateLimiter) limiterFor(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[clientID]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[clientID] = l
	}
	return l
}

// middleware enforces the per-client rate limit, responding 429 with the
// same JSON error envelope every other handler uses.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIDFor(r)
		if !rl.limiterFor(clientID).Allow() {
			w.Header().Set("Retry-After", "1")
			apierrors.Write(w, apierrors.New(apierrors.CodeRateLimitExceeded, "rate limit exceeded").
				WithRequestID(requestIDFrom(r.Context())))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIDFor(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// recoverMiddleware converts a panicking handler into a 500 rather than
// tearing down the whole server; the orchestrator/pipeline already
// recover per-checker/per-rewriter panics, this is the outermost
// backstop for anything else (a malformed request triggering a panic in
// decoding, for instance).
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				apierrors.Write(w, apierrors.New(apierrors.CodeInternalError, fmt.Sprintf("internal error: %v", rec)).
					WithRequestID(requestIDFrom(r.Context())))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
