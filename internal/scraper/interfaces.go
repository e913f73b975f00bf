package scraper

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata. Non-2xx statuses
// are data, not errors; only transport failures return an error.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// RetryPolicy decides how many attempts a page fetch gets and how long to
// wait between them. attempt counts the attempts made so far, starting at 1;
// cause is the error that ended the last one.
type RetryPolicy interface {
	ShouldRetry(cause error, attempt int) bool
	Backoff(attempt int, cause error) time.Duration
}

// pauseController abstracts how the client waits between attempts.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

// Detector classifies fetched pages as anti-bot blocks.
type Detector interface {
	Detect(resp FetchResponse) (Block, bool)
}
