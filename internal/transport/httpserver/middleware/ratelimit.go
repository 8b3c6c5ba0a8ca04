package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"member-tracker-go/internal/config"
	"member-tracker-go/pkg/logger"
)

// RateLimiters holds per-route-group limiters.
type RateLimiters struct {
	Reports func(http.Handler) http.Handler
	Imports func(http.Handler) http.Handler
}

func NewRateLimiters(cfg config.RateLimitConfig, log logger.Logger) RateLimiters {
	if !cfg.Enabled {
		return RateLimiters{Reports: passthrough, Imports: passthrough}
	}
	return RateLimiters{
		Reports: rateLimit("reports", cfg.ReportRequests, cfg.Window, log),
		Imports: rateLimit("imports", cfg.ImportRequests, cfg.Window, log),
	}
}

// rateLimit keys on the authenticated member when there is one and on the
// client IP otherwise.
func rateLimit(group string, requests int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if user, ok := UserFromContext(r.Context()); ok {
				return "member:" + user.Email, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("http: rate limit exceeded",
				"group", group,
				"ip", r.RemoteAddr,
				"path", r.URL.Path,
				"method", r.Method,
			)
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
		}),
	)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
