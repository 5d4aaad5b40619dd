// Package vision adapts AI vision backends behind port.VisionProvider and
// adds retry and multi-provider fallback on top of them.
package vision

import (
	"fmt"
	"log/slog"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/port"
)

// ProviderFactory creates a VisionProvider from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig, logger *slog.Logger) (port.VisionProvider, error)

// registry of vendor factories, populated by init() in each provider package.
var providers = map[domain.ProviderKind]ProviderFactory{}

// RegisterProvider registers a provider factory by kind.
func RegisterProvider(kind domain.ProviderKind, factory ProviderFactory) {
	providers[kind] = factory
}

// NewProvider builds the vendor client for cfg and wraps it in a Retrier.
func NewProvider(cfg *config.ProviderConfig, logger *slog.Logger) (port.VisionProvider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: no vision provider registered for %q", domain.ErrInvalidConfig, cfg.Provider)
	}
	p, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}
	return NewRetrier(p, string(cfg.Provider), cfg.MaxRetries, logger), nil
}

// NewFromConfig builds the configured provider chain. It returns nil when no
// provider is configured. More than one configured provider yields a
// FallbackProvider in primary, secondary, tertiary order.
func NewFromConfig(ai *config.AIConfig, logger *slog.Logger) (port.VisionProvider, error) {
	if !ai.Enabled() {
		return nil, nil
	}

	cfgs := ai.Providers()
	built := make([]port.VisionProvider, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := NewProvider(c, logger)
		if err != nil {
			return nil, err
		}
		built = append(built, p)
		names = append(names, string(c.Provider))
	}

	if len(built) == 1 {
		return built[0], nil
	}
	return NewFallbackProvider(built, names, logger), nil
}
