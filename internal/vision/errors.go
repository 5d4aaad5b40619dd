package vision

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"filegate/internal/domain"
)

// ErrEmptyContent is returned when a provider answers without any text.
var ErrEmptyContent = errors.New("provider returned empty content")

// RateLimitError indicates a vision provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. retryAfterSecs <= 0 means the
// provider did not say how long to wait.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs < 0 {
		retryAfterSecs = 0
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// RecognitionError reports that a provider exhausted its attempts.
// It matches domain.ErrVisionFailed under errors.Is.
type RecognitionError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s: %s gave up after %d attempt(s): %v", domain.ErrVisionFailed, e.Provider, e.Attempts, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

func (e *RecognitionError) Is(target error) bool {
	return target == domain.ErrVisionFailed
}
