package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cultivo/cultivo/internal/adapter/http/response"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// RateLimitMiddleware throttles clients by IP using the rate limit service.
type RateLimitMiddleware struct {
	limiter       ports.RateLimitService
	log           logger.Logger
	requests      int
	window        time.Duration
	blockDuration time.Duration
}

func NewRateLimitMiddleware(limiter ports.RateLimitService, log logger.Logger, requests int, window, blockDuration time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:       limiter,
		log:           log,
		requests:      requests,
		window:        window,
		blockDuration: blockDuration,
	}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := clientIP(r)
		key := "ip:" + clientIP

		blocked, err := m.limiter.IsBlocked(ctx, key)
		if err != nil {
			m.log.Error(ctx, "failed to check block status", err, map[string]interface{}{"ip": clientIP})
			next.ServeHTTP(w, r)
			return
		}
		if blocked {
			m.reject(w)
			return
		}

		allowed, err := m.limiter.Allow(ctx, key, m.requests, m.window)
		if err != nil {
			m.log.Error(ctx, "failed to check rate limit", err, map[string]interface{}{"ip": clientIP})
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			if err := m.limiter.Block(ctx, key, m.blockDuration); err != nil {
				m.log.Error(ctx, "failed to block client", err, map[string]interface{}{"ip": clientIP})
			}
			m.log.Warn(ctx, "rate limit exceeded", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			m.reject(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) reject(w http.ResponseWriter) {
	w.Header().Set("Retry-After", strconv.Itoa(int(m.blockDuration.Seconds())))
	response.TooManyRequests(w, "Too many requests. Please try again later.")
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
