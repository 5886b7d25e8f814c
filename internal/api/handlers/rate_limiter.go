package handlers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
)

// submissionLimiter bounds how many submissions one caller may make per window.
// The shared cache is authoritative; the in-process limiter covers a missing
// or failing cache.
type submissionLimiter struct {
	cache  providers.CacheProvider
	prefix string
	limit  int
	window time.Duration

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func newSubmissionLimiter(cache providers.CacheProvider, prefix string, limit int, window time.Duration) *submissionLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &submissionLimiter{
		cache:  cache,
		prefix: prefix,
		limit:  limit,
		window: window,
		local:  make(map[string]*rate.Limiter),
	}
}

// allow reports whether caller may submit, and how long to wait otherwise
func (l *submissionLimiter) allow(ctx context.Context, caller string) (bool, time.Duration) {
	if l.cache != nil {
		count, remaining, err := l.cache.Increment(ctx, l.prefix+caller, l.window)
		if err == nil {
			if remaining <= 0 {
				remaining = l.window
			}
			return count <= int64(l.limit), remaining
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("limiter", l.prefix).
			Msg("Rate limit cache unavailable, using local limiter")
	}

	limiter := l.limiterFor(caller)
	reservation := limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

func (l *submissionLimiter) limiterFor(caller string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.local[caller]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.local[caller] = limiter
	}
	return limiter
}
