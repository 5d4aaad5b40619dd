package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filegate/internal/config"
	"filegate/internal/csvexport"
	"filegate/internal/domain"
	"filegate/internal/formatter"
	"filegate/internal/service"
)

// ParseHandler handles file parsing endpoints.
type ParseHandler struct {
	parser service.ParserService
	batch  config.BatchConfig
}

// NewParseHandler creates a new ParseHandler. batch supplies defaults for
// fields a batch request leaves unset.
func NewParseHandler(parser service.ParserService, batch config.BatchConfig) *ParseHandler {
	return &ParseHandler{parser: parser, batch: batch}
}

// ParseRequest is the payload for POST /api/v1/parse.
type ParseRequest struct {
	URL string `json:"url" binding:"required"`
}

// FormatRequest selects text rendering of a batch. Unset fields take the
// formatter defaults.
type FormatRequest struct {
	IncludeTitle *bool   `json:"include_title"`
	IncludeURL   bool    `json:"include_url"`
	Separator    *string `json:"separator"`
	OnError      string  `json:"on_error"`
}

// BatchRequest is the payload for the batch and stream endpoints.
type BatchRequest struct {
	URLs            []string       `json:"urls" binding:"required,min=1"`
	Concurrency     int            `json:"concurrency"`
	ContinueOnError *bool          `json:"continue_on_error"`
	PreserveOrder   bool           `json:"preserve_order"`
	Format          *FormatRequest `json:"format"`
}

// BatchResponse is the data payload of a batch response.
type BatchResponse struct {
	Records   []*domain.ParsedRecord `json:"records"`
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Formatted *string                `json:"formatted,omitempty"`
}

// progressEvent is the payload of an SSE "progress" event.
type progressEvent struct {
	Completed int                  `json:"completed"`
	Total     int                  `json:"total"`
	Record    *domain.ParsedRecord `json:"record"`
}

// Parse handles POST /api/v1/parse. Failed parses are still a 200: the
// record carries the error.
func (h *ParseHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "url is required")
		return
	}

	rec := h.parser.ParseOne(c.Request.Context(), strings.TrimSpace(req.URL))
	RespondOK(c, rec)
}

// Formats handles GET /api/v1/formats
func (h *ParseHandler) Formats(c *gin.Context) {
	RespondOK(c, gin.H{
		"formats":    h.parser.SupportedFormats(),
		"ai_enabled": h.parser.AIEnabled(),
	})
}

// Batch handles POST /api/v1/parse/batch. With ?export=csv the records are
// returned as a CSV summary download instead of JSON.
func (h *ParseHandler) Batch(c *gin.Context) {
	req, fmtOpts, ok := h.bindBatch(c)
	if !ok {
		return
	}

	records, err := h.parser.ParseMany(c.Request.Context(), req.URLs, h.batchOptions(req))
	if err != nil {
		HandleError(c, err)
		return
	}

	if c.Query("export") == "csv" {
		h.writeCSV(c, records)
		return
	}

	resp := summarize(records)
	if fmtOpts != nil {
		text, fmtErr := formatter.Format(records, *fmtOpts)
		if fmtErr != nil {
			HandleError(c, fmtErr)
			return
		}
		resp.Formatted = &text
	}
	RespondOK(c, resp)
}

// Stream handles POST /api/v1/parse/stream. Each settled URL is sent as a
// "progress" event; the final "done" event carries the batch summary, or an
// "error" event is sent if the batch aborts.
func (h *ParseHandler) Stream(c *gin.Context) {
	req, fmtOpts, ok := h.bindBatch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	opts := h.batchOptions(req)
	opts.OnProgress = func(p domain.BatchProgress) {
		c.SSEvent("progress", progressEvent{Completed: p.Completed, Total: p.Total, Record: p.Record})
		c.Writer.Flush()
	}

	records, err := h.parser.ParseMany(c.Request.Context(), req.URLs, opts)
	if err != nil {
		_, code, msg := MapDomainError(err)
		c.SSEvent("error", APIError{Code: code, Message: msg})
		c.Writer.Flush()
		return
	}

	resp := summarize(records)
	resp.Records = nil
	if fmtOpts != nil {
		text, fmtErr := formatter.Format(records, *fmtOpts)
		if fmtErr != nil {
			_, code, msg := MapDomainError(fmtErr)
			c.SSEvent("error", APIError{Code: code, Message: msg})
			c.Writer.Flush()
			return
		}
		resp.Formatted = &text
	}
	c.SSEvent("done", resp)
	c.Writer.Flush()
}

// bindBatch decodes and validates a batch request. It writes the error
// response itself and returns ok=false on failure.
func (h *ParseHandler) bindBatch(c *gin.Context) (*BatchRequest, *formatter.Options, bool) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "urls must be a non-empty list")
		return nil, nil, false
	}
	for i, u := range req.URLs {
		req.URLs[i] = strings.TrimSpace(u)
		if req.URLs[i] == "" {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("urls[%d] is empty", i))
			return nil, nil, false
		}
	}
	if req.Concurrency < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "concurrency must not be negative")
		return nil, nil, false
	}

	if req.Format == nil {
		return &req, nil, true
	}
	opts, err := formatOptions(req.Format)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, nil, false
	}
	return &req, &opts, true
}

func (h *ParseHandler) batchOptions(req *BatchRequest) service.BatchOptions {
	opts := service.DefaultBatchOptions(h.batch)
	if req.Concurrency > 0 {
		opts.Concurrency = req.Concurrency
	}
	if req.ContinueOnError != nil {
		opts.ContinueOnError = *req.ContinueOnError
	}
	opts.PreserveOrder = req.PreserveOrder
	return opts
}

func (h *ParseHandler) writeCSV(c *gin.Context, records []*domain.ParsedRecord) {
	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteRecords(records); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(c.DefaultQuery("name", "batch"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func formatOptions(f *FormatRequest) (formatter.Options, error) {
	opts := formatter.DefaultOptions()
	if f.IncludeTitle != nil {
		opts.IncludeTitle = *f.IncludeTitle
	}
	opts.IncludeURL = f.IncludeURL
	if f.Separator != nil {
		opts.Separator = *f.Separator
	}
	if f.OnError != "" {
		policy := domain.ErrorPolicy(f.OnError)
		if !policy.Valid() {
			return opts, fmt.Errorf("on_error must be one of skip, include, error")
		}
		opts.OnError = policy
	}
	return opts, nil
}

func summarize(records []*domain.ParsedRecord) BatchResponse {
	resp := BatchResponse{Records: records, Total: len(records)}
	for _, rec := range records {
		if rec.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}
