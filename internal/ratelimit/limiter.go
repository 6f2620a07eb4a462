// Package ratelimit bounds how many reviews a single GitHub App installation
// may trigger.
package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/sevigo/code-council/internal/config"
)

const (
	defaultReviewsPerHour = 5
	// idle limiters are refilled by then, so forgetting them loses nothing.
	idleExpiry      = 2 * time.Hour
	cleanupInterval = 10 * time.Minute
)

// InstallationLimiter keeps a token bucket per installation.
type InstallationLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func NewInstallationLimiter(cfg config.RateLimitConfig) *InstallationLimiter {
	perHour := cfg.ReviewsPerHour
	if perHour <= 0 {
		perHour = defaultReviewsPerHour
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = perHour
	}
	return &InstallationLimiter{
		limiters: cache.New(idleExpiry, cleanupInterval),
		limit:    rate.Every(time.Hour / time.Duration(perHour)),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one review for the installation and reports whether it was
// within the limit.
func (l *InstallationLimiter) Allow(installationID int64) bool {
	return l.limiter(installationID).AllowN(l.now(), 1)
}

func (l *InstallationLimiter) limiter(installationID int64) *rate.Limiter {
	key := strconv.FormatInt(installationID, 10)

	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.SetDefault(key, lim)
	return lim
}
