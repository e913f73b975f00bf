package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the input is neither a product URL
	// nor a bare product identifier.
	ErrInvalidInput = errors.New("scraper: not a product url or identifier")
	// ErrBlocked matches errors for responses classified as anti-bot blocks.
	ErrBlocked = errors.New("scraper: request blocked")
	// ErrUnexpectedStatus is returned for non-2xx responses that are not blocks.
	ErrUnexpectedStatus = errors.New("scraper: unexpected status")
	// ErrRetriesExhausted wraps the last attempt error once no attempts remain.
	ErrRetriesExhausted = errors.New("scraper: retries exhausted")
)

// Block describes why a response was classified as an anti-bot block.
type Block struct {
	// Kind is "status" or "marker".
	Kind   string
	Reason string
}

// BlockError reports a blocked attempt. It matches ErrBlocked.
type BlockError struct {
	Block
	StatusCode int
	Profile    string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("scraper: request blocked (%s, status %d, profile %s)", e.Reason, e.StatusCode, e.Profile)
}

// Is lets errors.Is(err, ErrBlocked) match.
func (e *BlockError) Is(target error) bool {
	return target == ErrBlocked
}
