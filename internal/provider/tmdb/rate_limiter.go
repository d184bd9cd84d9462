package tmdb

import (
	"time"

	"golang.org/x/time/rate"
)

// TMDB allows roughly 40 requests per 10 seconds. Stay just under it.
const (
	rateLimitRequests = 38
	rateLimitWindow   = 10 * time.Second
)

// newRateLimiter spreads maxRequests evenly over window and allows a burst of
// maxRequests so short spikes are not delayed.
func newRateLimiter(maxRequests int, window time.Duration) *rate.Limiter {
	every := window / time.Duration(maxRequests)
	return rate.NewLimiter(rate.Every(every), maxRequests)
}
