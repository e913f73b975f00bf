package scraper

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

const (
	blockedBackoffFactor   = 3
	transportBackoffFactor = 2
)

// JitterRetryPolicy implements RetryPolicy with a randomized delay that grows
// with each attempt and stretches further after blocks.
type JitterRetryPolicy struct {
	maxAttempts int
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewJitterRetryPolicy builds a policy allowing maxAttempts attempts with a
// base delay drawn from [minDelay, maxDelay].
func NewJitterRetryPolicy(maxAttempts int, minDelay, maxDelay time.Duration) *JitterRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &JitterRetryPolicy{
		maxAttempts: maxAttempts,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
	}
}

// ShouldRetry decides whether another attempt is allowed after cause.
func (p *JitterRetryPolicy) ShouldRetry(cause error, attempt int) bool {
	if cause == nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(cause, ErrUnexpectedStatus) {
		return false
	}
	return true
}

// Backoff returns the wait before attempt+1. The base delay is scaled by
// 1+0.5*attempt, tripled after a block and doubled after a transport error.
func (p *JitterRetryPolicy) Backoff(attempt int, cause error) time.Duration {
	base := p.minDelay + p.randomJitter(p.maxDelay-p.minDelay)
	delay := time.Duration(float64(base) * (1 + 0.5*float64(attempt)))
	switch {
	case errors.Is(cause, ErrBlocked):
		delay *= blockedBackoffFactor
	case cause != nil:
		delay *= transportBackoffFactor
	}
	return delay
}

func (p *JitterRetryPolicy) randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)+1))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
