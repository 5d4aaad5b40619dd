package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"filegate/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	AI       AIConfig
	Download DownloadConfig
	Excel    ExcelConfig
	CSV      CSVConfig
	Image    AIUsageConfig
	PDF      AIUsageConfig
	Batch    BatchConfig
	S3       S3Config
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
}

// ProviderConfig holds settings for a single vision provider.
type ProviderConfig struct {
	Provider    domain.ProviderKind `mapstructure:"provider"`
	APIKey      string              `mapstructure:"api_key"`
	BaseURL     string              `mapstructure:"base_url"`
	Model       string              `mapstructure:"model"`
	VisionModel string              `mapstructure:"vision_model"`
	Timeout     time.Duration       `mapstructure:"timeout"`
	MaxRetries  int                 `mapstructure:"max_retries"`
	Headers     map[string]string   `mapstructure:"headers"`
}

// EffectiveModel returns the vision model if set, else the general model.
func (p *ProviderConfig) EffectiveModel() string {
	if p.VisionModel != "" {
		return p.VisionModel
	}
	return p.Model
}

// Validate checks that the provider block is usable.
func (p *ProviderConfig) Validate() error {
	switch p.Provider {
	case domain.ProviderOpenAI, domain.ProviderGemini, domain.ProviderAnthropic:
		if p.APIKey == "" {
			return fmt.Errorf("%w: %s provider requires an api key", domain.ErrInvalidConfig, p.Provider)
		}
	case domain.ProviderCustom:
		if p.BaseURL == "" || p.EffectiveModel() == "" {
			return fmt.Errorf("%w: custom provider requires base_url and model", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ai provider %q", domain.ErrInvalidConfig, p.Provider)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// AIConfig holds the primary vision provider plus optional fallbacks.
type AIConfig struct {
	ProviderConfig `mapstructure:",squash"`

	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// Enabled reports whether a primary provider is configured.
func (a *AIConfig) Enabled() bool {
	return a.Provider != ""
}

// PrimaryConfig returns the primary provider config.
func (a *AIConfig) PrimaryConfig() *ProviderConfig {
	return &a.ProviderConfig
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AIConfig) SecondaryConfig() *ProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (a *AIConfig) TertiaryConfig() *ProviderConfig {
	if a.Tertiary.Provider != "" {
		return &a.Tertiary
	}
	return nil
}

// Providers returns every configured provider in fallback order.
func (a *AIConfig) Providers() []*ProviderConfig {
	if !a.Enabled() {
		return nil
	}
	out := []*ProviderConfig{a.PrimaryConfig()}
	if s := a.SecondaryConfig(); s != nil {
		out = append(out, s)
	}
	if t := a.TertiaryConfig(); t != nil {
		out = append(out, t)
	}
	return out
}

// DownloadConfig holds byte fetcher settings.
type DownloadConfig struct {
	Timeout   time.Duration     `mapstructure:"timeout"`
	MaxSizeMB int64             `mapstructure:"max_size_mb"`
	UserAgent string            `mapstructure:"user_agent"`
	Headers   map[string]string `mapstructure:"headers"`
}

// MaxSizeBytes returns the download size cap in bytes.
func (d *DownloadConfig) MaxSizeBytes() int64 {
	return d.MaxSizeMB * 1024 * 1024
}

// ExcelConfig holds workbook extraction settings. MaxRows <= 0 means unlimited.
type ExcelConfig struct {
	MaxRows      int                 `mapstructure:"max_rows"`
	AllSheets    bool                `mapstructure:"all_sheets"`
	OutputFormat domain.OutputFormat `mapstructure:"output_format"`
}

// CSVConfig holds delimited-text extraction settings. MaxRows <= 0 means unlimited.
type CSVConfig struct {
	Delimiter    string              `mapstructure:"delimiter"`
	MaxRows      int                 `mapstructure:"max_rows"`
	OutputFormat domain.OutputFormat `mapstructure:"output_format"`
}

// AIUsageConfig controls whether and how a file category falls back to AI.
type AIUsageConfig struct {
	EnableAI  bool   `mapstructure:"enable_ai"`
	Prompt    string `mapstructure:"prompt"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// BatchConfig holds batch scheduler defaults.
type BatchConfig struct {
	Concurrency     int  `mapstructure:"concurrency"`
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

// S3Config holds object storage settings used for s3:// URLs.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
	Enabled       bool   `mapstructure:"enabled"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if !domain.ValidOutputFormats[c.Excel.OutputFormat] {
		return fmt.Errorf("%w: excel output_format %q", domain.ErrInvalidConfig, c.Excel.OutputFormat)
	}
	if !domain.ValidOutputFormats[c.CSV.OutputFormat] {
		return fmt.Errorf("%w: csv output_format %q", domain.ErrInvalidConfig, c.CSV.OutputFormat)
	}
	if len([]rune(c.CSV.Delimiter)) != 1 {
		return fmt.Errorf("%w: csv delimiter must be a single character", domain.ErrInvalidConfig)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("%w: batch concurrency must be at least 1", domain.ErrInvalidConfig)
	}
	for _, p := range c.AI.Providers() {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables with the FILEGATE_ prefix,
// optionally layered over the file named by FILEGATE_CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FILEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	_ = v.BindEnv("config_file", "FILEGATE_CONFIG_FILE")
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Bind environment variables explicitly for nested keys
	for _, key := range envKeys {
		_ = v.BindEnv(key, "FILEGATE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Enabled: v.GetBool("log.enabled"),
		Level:   v.GetString("log.level"),
		Format:  v.GetString("log.format"),
	}
	cfg.AI = AIConfig{
		ProviderConfig: loadProvider(v, "ai"),
		Secondary:      loadProvider(v, "ai.secondary"),
		Tertiary:       loadProvider(v, "ai.tertiary"),
	}
	cfg.Download = DownloadConfig{
		Timeout:   v.GetDuration("download.timeout"),
		MaxSizeMB: v.GetInt64("download.max_size_mb"),
		UserAgent: v.GetString("download.user_agent"),
		Headers:   stringMap(v, "download.headers"),
	}
	cfg.Excel = ExcelConfig{
		MaxRows:      v.GetInt("excel.max_rows"),
		AllSheets:    v.GetBool("excel.all_sheets"),
		OutputFormat: domain.OutputFormat(v.GetString("excel.output_format")),
	}
	cfg.CSV = CSVConfig{
		Delimiter:    v.GetString("csv.delimiter"),
		MaxRows:      v.GetInt("csv.max_rows"),
		OutputFormat: domain.OutputFormat(v.GetString("csv.output_format")),
	}
	cfg.Image = AIUsageConfig{
		EnableAI:  v.GetBool("image.enable_ai"),
		Prompt:    v.GetString("image.prompt"),
		MaxTokens: v.GetInt("image.max_tokens"),
	}
	cfg.PDF = AIUsageConfig{
		EnableAI:  v.GetBool("pdf.enable_ai"),
		Prompt:    v.GetString("pdf.prompt"),
		MaxTokens: v.GetInt("pdf.max_tokens"),
	}
	cfg.Batch = BatchConfig{
		Concurrency:     v.GetInt("batch.concurrency"),
		ContinueOnError: v.GetBool("batch.continue_on_error"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration Load would produce with an empty environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			Environment:  v.GetString("server.environment"),
		},
		Log: LogConfig{Enabled: true, Level: "info", Format: "console"},
		AI:  AIConfig{ProviderConfig: loadProvider(v, "ai")},
		Download: DownloadConfig{
			Timeout:   v.GetDuration("download.timeout"),
			MaxSizeMB: v.GetInt64("download.max_size_mb"),
			UserAgent: v.GetString("download.user_agent"),
		},
		Excel: ExcelConfig{MaxRows: -1, AllSheets: true, OutputFormat: domain.OutputMarkdown},
		CSV:   CSVConfig{Delimiter: ",", MaxRows: -1, OutputFormat: domain.OutputMarkdown},
		Image: AIUsageConfig{EnableAI: true, MaxTokens: v.GetInt("image.max_tokens")},
		PDF:   AIUsageConfig{EnableAI: true, MaxTokens: v.GetInt("pdf.max_tokens")},
		Batch: BatchConfig{Concurrency: v.GetInt("batch.concurrency"), ContinueOnError: true},
		S3:    S3Config{Region: v.GetString("s3.region"), PresignExpiry: v.GetInt64("s3.presign_expiry")},
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// AI provider defaults
	for _, prefix := range []string{"ai", "ai.secondary", "ai.tertiary"} {
		v.SetDefault(prefix+".provider", "")
		v.SetDefault(prefix+".api_key", "")
		v.SetDefault(prefix+".base_url", "")
		v.SetDefault(prefix+".model", "")
		v.SetDefault(prefix+".vision_model", "")
		v.SetDefault(prefix+".timeout", "60s")
		v.SetDefault(prefix+".max_retries", 3)
		v.SetDefault(prefix+".headers", "")
	}

	// Download defaults
	v.SetDefault("download.timeout", "60s")
	v.SetDefault("download.max_size_mb", 50)
	v.SetDefault("download.user_agent", "filegate/1.0")
	v.SetDefault("download.headers", "")

	// Tabular defaults
	v.SetDefault("excel.max_rows", -1)
	v.SetDefault("excel.all_sheets", true)
	v.SetDefault("excel.output_format", string(domain.OutputMarkdown))
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.max_rows", -1)
	v.SetDefault("csv.output_format", string(domain.OutputMarkdown))

	// AI fallback usage defaults
	v.SetDefault("image.enable_ai", true)
	v.SetDefault("image.prompt", "")
	v.SetDefault("image.max_tokens", 1000)
	v.SetDefault("pdf.enable_ai", true)
	v.SetDefault("pdf.prompt", "")
	v.SetDefault("pdf.max_tokens", 4000)

	// Batch defaults
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("batch.continue_on_error", true)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
}

var envKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout", "server.environment",
	"log.enabled", "log.level", "log.format",
	"ai.provider", "ai.api_key", "ai.base_url", "ai.model", "ai.vision_model",
	"ai.timeout", "ai.max_retries", "ai.headers",
	"ai.secondary.provider", "ai.secondary.api_key", "ai.secondary.base_url", "ai.secondary.model",
	"ai.secondary.vision_model", "ai.secondary.timeout", "ai.secondary.max_retries", "ai.secondary.headers",
	"ai.tertiary.provider", "ai.tertiary.api_key", "ai.tertiary.base_url", "ai.tertiary.model",
	"ai.tertiary.vision_model", "ai.tertiary.timeout", "ai.tertiary.max_retries", "ai.tertiary.headers",
	"download.timeout", "download.max_size_mb", "download.user_agent", "download.headers",
	"excel.max_rows", "excel.all_sheets", "excel.output_format",
	"csv.delimiter", "csv.max_rows", "csv.output_format",
	"image.enable_ai", "image.prompt", "image.max_tokens",
	"pdf.enable_ai", "pdf.prompt", "pdf.max_tokens",
	"batch.concurrency", "batch.continue_on_error",
	"s3.enabled", "s3.region", "s3.endpoint", "s3.access_key", "s3.secret_key", "s3.presign_expiry",
	"cors.allowed_origins",
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:    domain.ProviderKind(strings.ToLower(v.GetString(prefix + ".provider"))),
		APIKey:      v.GetString(prefix + ".api_key"),
		BaseURL:     v.GetString(prefix + ".base_url"),
		Model:       v.GetString(prefix + ".model"),
		VisionModel: v.GetString(prefix + ".vision_model"),
		Timeout:     v.GetDuration(prefix + ".timeout"),
		MaxRetries:  v.GetInt(prefix + ".max_retries"),
		Headers:     stringMap(v, prefix+".headers"),
	}
}

// stringMap reads a header block either as a map (from a config file) or as
// a "K=V,K2=V2" string (from the environment).
func stringMap(v *viper.Viper, key string) map[string]string {
	if m := v.GetStringMapString(key); len(m) > 0 {
		return m
	}
	return ParseHeaderList(v.GetString(key))
}

// ParseHeaderList parses "K=V,K2=V2" into a map, ignoring malformed pairs.
func ParseHeaderList(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, val, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(val)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
