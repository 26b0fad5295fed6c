package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by the watch loop to cap how often
// re-analysis batches run.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows perSecond events on average with bursts of up to burst.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow takes a token if one is available right now.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Wait blocks for the next token; it fails early when ctx ends or its
// deadline cannot be met.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
