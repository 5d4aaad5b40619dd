package vision

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"filegate/internal/port"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	// maxRateLimitWait caps how long a Retry-After header can stall one attempt.
	maxRateLimitWait = 30 * time.Second
)

// Retrier retries a provider on any failure, including empty content, with
// a linear backoff of attempt x BaseDelay between attempts.
type Retrier struct {
	provider    port.VisionProvider
	name        string
	maxAttempts int
	logger      *slog.Logger

	// BaseDelay is the backoff unit. Tests shorten it.
	BaseDelay time.Duration
}

// NewRetrier wraps p. maxAttempts < 1 means a single attempt.
func NewRetrier(p port.VisionProvider, name string, maxAttempts int, logger *slog.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		provider:    p,
		name:        name,
		maxAttempts: maxAttempts,
		logger:      logger,
		BaseDelay:   defaultBaseDelay,
	}
}

func (r *Retrier) AnalyzeImage(ctx context.Context, input port.VisionInput) (*port.VisionOutput, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		out, err := r.provider.AnalyzeImage(ctx, input)
		if err == nil && out != nil && strings.TrimSpace(out.Content) != "" {
			if attempt > 1 {
				r.logger.Info("vision.retry.recovered", "provider", r.name, "attempt", attempt)
			}
			return out, nil
		}
		if err == nil {
			err = ErrEmptyContent
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		delay := time.Duration(attempt) * r.BaseDelay
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > delay {
			delay = min(rlErr.RetryAfter, maxRateLimitWait)
		}
		r.logger.Warn("vision.retry",
			"provider", r.name,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, &RecognitionError{Provider: r.name, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return nil, &RecognitionError{Provider: r.name, Attempts: r.maxAttempts, Err: lastErr}
}
