package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound scraper calls per account.
type Limiter interface {
	Allow(username string) bool
	Wait(ctx context.Context, username string) error
}

// InMemoryLimiter keeps one token bucket per username.
type InMemoryLimiter struct {
	buckets map[string]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
}

// NewInMemoryLimiter creates a limiter allowing `requests` calls per `per`
// with the given burst.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	return &InMemoryLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) bucket(username string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.buckets[username]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.buckets[username] = limiter
	}
	return limiter
}

func (l *InMemoryLimiter) Allow(username string) bool {
	return l.bucket(username).Allow()
}

// Wait blocks until the account's bucket has a token or ctx is cancelled.
func (l *InMemoryLimiter) Wait(ctx context.Context, username string) error {
	return l.bucket(username).Wait(ctx)
}
