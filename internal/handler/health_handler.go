package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filegate/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	parser service.ParserService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(parser service.ParserService) *HealthHandler {
	return &HealthHandler{parser: parser}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. Without a vision provider the service still
// serves local formats, so readiness never fails on it.
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_enabled": h.parser.AIEnabled()})
}
