package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/handler"
	"filegate/internal/logging"
	"filegate/internal/router"
	"filegate/mocks"
)

func TestSetup_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.MockParserService)
	svc.On("AIEnabled").Return(false)
	svc.On("SupportedFormats").Return([]domain.SupportedFormat{})
	svc.On("ParseOne", mock.Anything, "https://x.test/a.txt").
		Return(domain.NewSuccessRecord("a.txt", "https://x.test/a.txt", domain.CategoryText, "hi"))

	r := router.Setup(
		logging.Nop(),
		[]string{"*"},
		handler.NewParseHandler(svc, config.BatchConfig{Concurrency: 1}),
		handler.NewHealthHandler(svc),
	)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/api/v1/formats", "", http.StatusOK},
		{http.MethodPost, "/api/v1/parse", `{"url":"https://x.test/a.txt"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/parse/batch", `{}`, http.StatusBadRequest},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), tt.path)
	}
}
