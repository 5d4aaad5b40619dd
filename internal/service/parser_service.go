package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filegate/internal/config"
	"filegate/internal/decoder"
	"filegate/internal/domain"
	"filegate/internal/filetype"
	"filegate/internal/port"
)

// ParserService defines the file ingestion contract.
type ParserService interface {
	// ParseOne never fails; problems are reported on the returned record.
	ParseOne(ctx context.Context, url string) *domain.ParsedRecord
	ParseMany(ctx context.Context, urls []string, opts BatchOptions) ([]*domain.ParsedRecord, error)
	SupportedFormats() []domain.SupportedFormat
	AIEnabled() bool
}

// categoryHandler produces the record for one classified URL.
type categoryHandler func(ctx context.Context, fileName, url string, category domain.FileCategory) *domain.ParsedRecord

type parserService struct {
	cfg      *config.Config
	fetcher  port.ByteFetcher
	resolver port.URLResolver
	decoders decoder.Registry
	vision   port.VisionProvider
	logger   *slog.Logger
	handlers map[domain.FileCategory]categoryHandler
}

// NewParserService creates a new ParserService implementation. visionProvider
// and resolver may be nil: without a provider AI categories yield placeholder
// records, and without a resolver the original URL is sent to the provider.
func NewParserService(
	cfg *config.Config,
	fetcher port.ByteFetcher,
	resolver port.URLResolver,
	decoders decoder.Registry,
	visionProvider port.VisionProvider,
	logger *slog.Logger,
) ParserService {
	s := &parserService{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: resolver,
		decoders: decoders,
		vision:   visionProvider,
		logger:   logger,
	}
	s.handlers = map[domain.FileCategory]categoryHandler{
		domain.CategoryImage: s.parseWithAI,
		domain.CategoryAudio: s.parseWithAI,
		domain.CategoryVideo: s.parseWithAI,
		domain.CategoryPDF:   s.parsePDF,
	}
	for category := range decoders {
		if _, ok := s.handlers[category]; !ok {
			s.handlers[category] = s.parseLocal
		}
	}
	return s
}

func (s *parserService) AIEnabled() bool {
	return s.vision != nil
}

func (s *parserService) SupportedFormats() []domain.SupportedFormat {
	return filetype.SupportedFormats()
}

func (s *parserService) ParseMany(ctx context.Context, urls []string, opts BatchOptions) ([]*domain.ParsedRecord, error) {
	return NewBatchScheduler(s, s.logger).Run(ctx, urls, opts)
}

func (s *parserService) ParseOne(ctx context.Context, url string) (rec *domain.ParsedRecord) {
	fileName := filetype.FileNameFromURL(url)
	category := filetype.Classify(fileName)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("parser.parse.panic", "url", url, "panic", r)
			rec = domain.NewFailedRecord(fileName, url, category, fmt.Sprintf("internal error: %v", r))
		}
		s.logger.Info("parser.parse.done",
			"url", url,
			"file", fileName,
			"category", category,
			"success", rec != nil && rec.Success,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	handler, ok := s.handlers[category]
	if !ok {
		return domain.NewFailedRecord(fileName, url, category,
			fmt.Sprintf("%s: %s", domain.ErrUnsupportedFormat, fileName))
	}
	return handler(ctx, fileName, url, category)
}

// parseLocal fetches the file and hands it to the category's decoder.
func (s *parserService) parseLocal(ctx context.Context, fileName, url string, category domain.FileCategory) *domain.ParsedRecord {
	res, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("parser.fetch.failed", "url", url, "error", err)
		return domain.NewFailedRecord(fileName, url, category, err.Error())
	}

	dec := s.decoders[category]
	out, err := dec.Decode(ctx, res.Data, fileName)
	if err != nil {
		s.logger.Warn("parser.decode.failed", "url", url, "category", category, "error", err)
		return domain.NewFailedRecord(fileName, url, category, err.Error())
	}

	rec := domain.NewSuccessRecord(fileName, url, category, out.Content)
	rec.Table = out.Table
	rec.Metadata = withFetchInfo(out.Metadata, res)
	return rec
}

// parsePDF tries the local text layer first and falls back to AI on any
// decode failure. A failed download still fails the record.
func (s *parserService) parsePDF(ctx context.Context, fileName, url string, category domain.FileCategory) *domain.ParsedRecord {
	res, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("parser.fetch.failed", "url", url, "error", err)
		return domain.NewFailedRecord(fileName, url, category, err.Error())
	}

	if dec, ok := s.decoders[category]; ok {
		out, err := dec.Decode(ctx, res.Data, fileName)
		if err == nil {
			rec := domain.NewSuccessRecord(fileName, url, category, out.Content)
			rec.Metadata = withFetchInfo(out.Metadata, res)
			return rec
		}
		s.logger.Warn("parser.pdf.local_failed", "url", url, "error", err)
	}

	return s.aiFallback(ctx, fileName, url, category, withFetchInfo(nil, res))
}

func (s *parserService) parseWithAI(ctx context.Context, fileName, url string, category domain.FileCategory) *domain.ParsedRecord {
	return s.aiFallback(ctx, fileName, url, category, nil)
}

// aiFallback asks the vision provider about the URL and degrades to a
// placeholder record when AI is disabled or fails. It always succeeds.
func (s *parserService) aiFallback(ctx context.Context, fileName, url string, category domain.FileCategory, meta *domain.RecordMetadata) *domain.ParsedRecord {
	usage := s.usageFor(category)
	if meta == nil {
		meta = &domain.RecordMetadata{}
	}

	if s.vision != nil && usage.EnableAI {
		out, err := s.vision.AnalyzeImage(ctx, port.VisionInput{
			ImageURL:  s.publicURL(ctx, url),
			Prompt:    s.promptFor(category),
			MaxTokens: usage.MaxTokens,
		})
		if err == nil {
			rec := domain.NewSuccessRecord(fileName, url, category, out.Content)
			meta.Model = out.Model
			meta.Usage = out.Usage
			meta.Extra = map[string]any{"source": "vision"}
			rec.Metadata = meta
			return rec
		}
		s.logger.Warn("parser.vision.failed", "url", url, "category", category, "error", err)
	}

	rec := domain.NewSuccessRecord(fileName, url, category, placeholder(category, fileName, url))
	meta.Extra = map[string]any{"source": "placeholder"}
	rec.Metadata = meta
	return rec
}

func (s *parserService) publicURL(ctx context.Context, url string) string {
	if s.resolver == nil {
		return url
	}
	pub, err := s.resolver.PublicURL(ctx, url)
	if err != nil {
		s.logger.Warn("parser.resolve.failed", "url", url, "error", err)
		return url
	}
	return pub
}

func (s *parserService) usageFor(category domain.FileCategory) config.AIUsageConfig {
	if category == domain.CategoryPDF {
		return s.cfg.PDF
	}
	return s.cfg.Image
}

// promptFor returns the configured override for images and PDFs, else the
// category's built-in prompt.
func (s *parserService) promptFor(category domain.FileCategory) string {
	switch category {
	case domain.CategoryImage:
		if s.cfg.Image.Prompt != "" {
			return s.cfg.Image.Prompt
		}
	case domain.CategoryPDF:
		if s.cfg.PDF.Prompt != "" {
			return s.cfg.PDF.Prompt
		}
	}
	return defaultPrompts[category]
}

func placeholder(category domain.FileCategory, fileName, url string) string {
	return fmt.Sprintf("[%s file: %s]\nThis %s file could not be analyzed automatically. "+
		"Open the link to inspect its content directly: %s",
		category.Label(), fileName, category.Label(), url)
}

func withFetchInfo(meta *domain.RecordMetadata, res *port.FetchResult) *domain.RecordMetadata {
	if meta == nil {
		meta = &domain.RecordMetadata{}
	}
	meta.Size = int64(len(res.Data))
	meta.MimeType = res.ContentType
	return meta
}
