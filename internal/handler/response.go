package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"filegate/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrFormattingAborted):
		return http.StatusUnprocessableEntity, "FORMATTING_ABORTED", err.Error()
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported file format"
	case errors.Is(err, domain.ErrUnsupportedScheme):
		return http.StatusBadRequest, "UNSUPPORTED_SCHEME", "url scheme must be http, https or s3"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway, "FETCH_FAILED", "file download failed"
	case errors.Is(err, domain.ErrDecodeFailed), errors.Is(err, domain.ErrLegacyWordFormat),
		errors.Is(err, domain.ErrLegacyExcelFormat):
		return http.StatusUnprocessableEntity, "DECODE_FAILED", err.Error()
	case errors.Is(err, domain.ErrVisionFailed):
		return http.StatusBadGateway, "VISION_FAILED", "vision recognition failed"
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusInternalServerError, "INVALID_CONFIG", "server is misconfigured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		slog.Default().Error("handler.request.failed", "request_id", requestID, "error", err)
	}
	RespondError(c, status, code, msg)
}
