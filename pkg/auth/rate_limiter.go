package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter admits at most limit requests per key within any window of windowSize.
// A limit below 1 disables limiting.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	requests   map[string][]time.Time
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		requests:   make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a request for key and reports whether it is admitted
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit < 1 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	inWindow := l.trim(key, now)
	if len(inWindow) >= l.limit {
		return false, nil
	}

	l.requests[key] = append(inWindow, now)
	return true, nil
}

// RetryAfter returns how long key has to wait before its next request is admitted
func (l *SlidingWindowLimiter) RetryAfter(key string) time.Duration {
	if l.limit < 1 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	inWindow := l.trim(key, now)
	if len(inWindow) < l.limit {
		return 0
	}
	return inWindow[len(inWindow)-l.limit].Add(l.windowSize).Sub(now)
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.requests, key)
	return nil
}

// trim drops requests that left the window; keys without requests are forgotten.
// Requests are appended in order, so the expired ones form a prefix.
func (l *SlidingWindowLimiter) trim(key string, now time.Time) []time.Time {
	requests := l.requests[key]
	windowStart := now.Add(-l.windowSize)

	keep := 0
	for keep < len(requests) && !requests[keep].After(windowStart) {
		keep++
	}
	requests = requests[keep:]

	if len(requests) == 0 {
		delete(l.requests, key)
		return nil
	}
	l.requests[key] = requests
	return requests
}

// UserRateLimiter limits requests per authenticated user over a one minute window
type UserRateLimiter struct {
	limiter *SlidingWindowLimiter
}

// NewUserRateLimiter creates a new user-based rate limiter
func NewUserRateLimiter(requestsPerMinute int) *UserRateLimiter {
	return &UserRateLimiter{
		limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute),
	}
}

// Allow checks if a request from a user is allowed
func (l *UserRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.limiter.Allow(ctx, userKey(userID))
}

// RetryAfter returns how long the user has to wait for the next admitted request
func (l *UserRateLimiter) RetryAfter(userID string) time.Duration {
	return l.limiter.RetryAfter(userKey(userID))
}

func userKey(userID string) string {
	return "user:" + userID
}
