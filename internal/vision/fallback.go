package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"filegate/internal/port"
)

// defaultCircuitWindow applies when a 429 carried no Retry-After.
const defaultCircuitWindow = 60 * time.Second

// circuitState holds the instant a rate-limited vision provider may be
// called again.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // unset while the provider has not been throttled
}

// isOpenWithReset reports whether the provider is still throttled at now.
func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackProvider chains vision providers. A request goes to the first
// provider that is not cooling down after a 429; any failure moves on to the
// next one.
type FallbackProvider struct {
	providers []port.VisionProvider
	circuits  []*circuitState
	names     []string
	logger    *slog.Logger
}

// NewFallbackProvider chains providers in priority order. names[i] labels
// providers[i] in logs.
func NewFallbackProvider(providers []port.VisionProvider, names []string, logger *slog.Logger) *FallbackProvider {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackProvider{
		providers: providers,
		circuits:  circuits,
		names:     names,
		logger:    logger,
	}
}

// AnalyzeImage returns the first successful recognition. When every provider
// is throttled the error wraps a RateLimitError timed to the earliest reset.
func (f *FallbackProvider) AnalyzeImage(ctx context.Context, input port.VisionInput) (*port.VisionOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.providers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("vision.fallback.skip", "provider", f.names[i], "until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.AnalyzeImage(ctx, input)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("vision.fallback.failed", "provider", f.names[i], "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			window := rlErr.RetryAfter
			if window <= 0 {
				window = defaultCircuitWindow
			}
			resetAt := now.Add(window)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		rl := NewRateLimitError("all", fmt.Errorf("all vision providers rate limited"), int(retryAfter.Seconds()))
		return nil, &RecognitionError{Provider: "fallback", Attempts: len(f.providers), Err: rl}
	}

	return nil, fmt.Errorf("all vision providers failed: %w", lastErr)
}
