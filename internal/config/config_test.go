package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/config"
	"filegate/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Download.Timeout)
	assert.Equal(t, int64(50*1024*1024), cfg.Download.MaxSizeBytes())
	assert.Equal(t, -1, cfg.Excel.MaxRows)
	assert.True(t, cfg.Excel.AllSheets)
	assert.Equal(t, domain.OutputMarkdown, cfg.Excel.OutputFormat)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, -1, cfg.CSV.MaxRows)
	assert.True(t, cfg.Image.EnableAI)
	assert.Greater(t, cfg.PDF.MaxTokens, cfg.Image.MaxTokens)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.True(t, cfg.Batch.ContinueOnError)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FILEGATE_AI_PROVIDER", "Gemini")
	t.Setenv("FILEGATE_AI_API_KEY", "g-key")
	t.Setenv("FILEGATE_AI_MAX_RETRIES", "5")
	t.Setenv("FILEGATE_AI_HEADERS", "X-Team=docs, X-Env=test")
	t.Setenv("FILEGATE_CSV_DELIMITER", ";")
	t.Setenv("FILEGATE_EXCEL_OUTPUT_FORMAT", "json")
	t.Setenv("FILEGATE_BATCH_CONCURRENCY", "8")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "g-key", cfg.AI.APIKey)
	assert.Equal(t, 5, cfg.AI.MaxRetries)
	assert.Equal(t, map[string]string{"X-Team": "docs", "X-Env": "test"}, cfg.AI.Headers)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, domain.OutputJSON, cfg.Excel.OutputFormat)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filegate.yaml")
	content := `
ai:
  provider: anthropic
  api_key: sk-file
  secondary:
    provider: openai
    api_key: sk-openai
excel:
  max_rows: 20
  all_sheets: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FILEGATE_CONFIG_FILE", path)
	t.Setenv("FILEGATE_EXCEL_MAX_ROWS", "25")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	require.NotNil(t, cfg.AI.SecondaryConfig())
	assert.Equal(t, domain.ProviderOpenAI, cfg.AI.SecondaryConfig().Provider)
	assert.Nil(t, cfg.AI.TertiaryConfig())
	assert.Len(t, cfg.AI.Providers(), 2)
	assert.Equal(t, 25, cfg.Excel.MaxRows)
	assert.False(t, cfg.Excel.AllSheets)
}

func TestLoad_InvalidOutputFormat(t *testing.T) {
	t.Setenv("FILEGATE_CSV_OUTPUT_FORMAT", "xml")

	_, err := config.Load()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ProviderConfig
		wantErr bool
	}{
		{"openai with key", config.ProviderConfig{Provider: domain.ProviderOpenAI, APIKey: "k"}, false},
		{"openai without key", config.ProviderConfig{Provider: domain.ProviderOpenAI}, true},
		{"custom complete", config.ProviderConfig{Provider: domain.ProviderCustom, BaseURL: "http://llm.local/v1", Model: "llava"}, false},
		{"custom vision model only", config.ProviderConfig{Provider: domain.ProviderCustom, BaseURL: "http://llm.local/v1", VisionModel: "llava"}, false},
		{"custom missing base url", config.ProviderConfig{Provider: domain.ProviderCustom, Model: "llava"}, true},
		{"custom missing model", config.ProviderConfig{Provider: domain.ProviderCustom, BaseURL: "http://llm.local/v1"}, true},
		{"unknown provider", config.ProviderConfig{Provider: "mistral", APIKey: "k"}, true},
		{"negative retries", config.ProviderConfig{Provider: domain.ProviderGemini, APIKey: "k", MaxRetries: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProviderConfig_EffectiveModel(t *testing.T) {
	p := config.ProviderConfig{Model: "gpt-4o-mini"}
	assert.Equal(t, "gpt-4o-mini", p.EffectiveModel())

	p.VisionModel = "gpt-4o"
	assert.Equal(t, "gpt-4o", p.EffectiveModel())
}

func TestParseHeaderList(t *testing.T) {
	assert.Equal(t, map[string]string{"A": "1", "B": "two=2"}, config.ParseHeaderList("A=1, B=two=2,broken,=x"))
	assert.Empty(t, config.ParseHeaderList(""))
}
