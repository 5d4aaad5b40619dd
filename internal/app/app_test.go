package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/logging"
)

func TestBuild_ParsesOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("name,qty\nbolt,4\nnut,9\n"))
	}))
	defer srv.Close()

	cfg := config.Default()
	svc, err := Build(cfg, logging.Nop())
	require.NoError(t, err)
	assert.False(t, svc.AIEnabled())

	rec := svc.ParseOne(context.Background(), srv.URL+"/parts.csv")
	require.True(t, rec.Success, rec.Error)
	assert.Equal(t, domain.CategoryCSV, rec.Category)
	assert.Contains(t, rec.Content, "| bolt | 4 |")
}

func TestBuild_S3DisabledRejectsS3URLs(t *testing.T) {
	svc, err := Build(config.Default(), logging.Nop())
	require.NoError(t, err)

	rec := svc.ParseOne(context.Background(), "s3://bucket/report.csv")
	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "unsupported url scheme")
}

func TestBuild_InvalidAIConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "nope"

	_, err := Build(cfg, logging.Nop())
	assert.Error(t, err)
}
