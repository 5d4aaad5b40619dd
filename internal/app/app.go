// Package app wires the parser service from configuration. It is shared by
// the HTTP server and the command line tool.
package app

import (
	"fmt"
	"log/slog"

	"filegate/internal/config"
	"filegate/internal/decoder"
	"filegate/internal/fetch"
	"filegate/internal/service"
	s3storage "filegate/internal/storage/s3"
	"filegate/internal/vision/providers"
)

// Build constructs the ParserService described by cfg. s3:// URLs are only
// accepted when cfg.S3.Enabled is set.
func Build(cfg *config.Config, logger *slog.Logger) (service.ParserService, error) {
	httpFetcher := fetch.NewHTTPFetcher(cfg.Download, logger)

	var s3Fetcher *fetch.S3Fetcher
	if cfg.S3.Enabled {
		s3Client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		s3Fetcher = fetch.NewS3Fetcher(s3Client, cfg.Download.MaxSizeBytes(), cfg.S3.PresignExpiry)
	}
	router := fetch.NewRouter(httpFetcher, s3Fetcher)

	visionProvider, err := providers.Build(&cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vision provider: %w", err)
	}
	if visionProvider == nil {
		logger.Warn("app.vision.disabled", "reason", "ai.provider not set; image, audio and video files yield placeholders")
	}

	return service.NewParserService(
		cfg,
		router,
		router,
		decoder.RegistryFromConfig(cfg),
		visionProvider,
		logger,
	), nil
}
