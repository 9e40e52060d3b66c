package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/apperrors"
	"shore-hockey/pkg/metrics"
	"shore-hockey/pkg/middleware"
	"shore-hockey/pkg/models"
	"shore-hockey/pkg/ratelimit"
	"shore-hockey/pkg/services"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.LeadSubmissionService
	metrics           *metrics.Metrics
	limiter           *ratelimit.SlidingWindow
	limiterStats      *ratelimit.MemoryStatsStore
	maxBodyBytes      int64
	staticDir         string
	now               func() time.Time
}

// Options carries the non-service dependencies of Handlers.
type Options struct {
	Metrics      *metrics.Metrics
	Limiter      *ratelimit.SlidingWindow
	LimiterStats *ratelimit.MemoryStatsStore
	MaxBodyBytes int64
	StaticDir    string
	Now          func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.LeadSubmissionService, opts Options) *Handlers {
	h := &Handlers{
		submissionService: submissionService,
		metrics:           opts.Metrics,
		limiter:           opts.Limiter,
		limiterStats:      opts.LimiterStats,
		maxBodyBytes:      opts.MaxBodyBytes,
		staticDir:         opts.StaticDir,
		now:               opts.Now,
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = 250 * 1024
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		OK:        true,
		Timestamp: h.now().UTC().Format(models.TimestampLayout),
	})
}

// Metrics renders counters as plain text.
func (h *Handlers) Metrics(c *gin.Context) {
	var extra []string
	if h.limiter != nil {
		extra = append(extra, fmt.Sprintf("ratelimit_tracked_clients=%d", h.limiter.Keys()))
	}
	if h.limiterStats != nil {
		total := h.limiterStats.Total()
		extra = append(extra,
			fmt.Sprintf("ratelimit_allowed_total=%d", total.Allowed),
			fmt.Sprintf("ratelimit_denied_total=%d", total.Denied))
	}
	c.String(http.StatusOK, h.metrics.String(extra...))
}

// HandleCampLead processes POST /api/leads/camp.
func (h *Handlers) HandleCampLead(c *gin.Context) {
	h.handleLead(c, h.submissionService.ProcessCampSubmission)
}

// HandleBusinessLead processes POST /api/leads/business.
func (h *Handlers) HandleBusinessLead(c *gin.Context) {
	h.handleLead(c, h.submissionService.ProcessBusinessSubmission)
}

type processFunc func(ctx context.Context, requestID string, input map[string]any) (services.Receipt, error)

func (h *Handlers) handleLead(c *gin.Context, process processFunc) {
	requestID := middleware.GetRequestID(c)

	input, err := h.readInput(c)
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	receipt, err := process(c.Request.Context(), requestID, input)
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		OK:      true,
		Message: receipt.Message,
		ID:      receipt.ID,
	})
}

// readInput accepts a JSON object or a urlencoded form. An empty body is an
// empty object so validation can name the first missing field.
func (h *Handlers) readInput(c *gin.Context) (map[string]any, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	if c.ContentType() == gin.MIMEPOSTForm {
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		input := make(map[string]any, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				input[k] = v[0]
			}
		}
		return input, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	var input map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		return nil, apperrors.Validation("", "Request body must be a JSON object.")
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, apperrors.Validation("", "Request body must be a JSON object.")
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge()
	}
	return apperrors.Validation("", "Request body could not be read.")
}

func (h *Handlers) respondError(c *gin.Context, requestID string, err error) {
	appErr := apperrors.From(err)

	ev := log.Warn()
	if appErr.Status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Str("request_id", requestID).
		Str("code", string(appErr.Code)).
		Str("field", appErr.Field).
		Err(appErr.Err).
		Msg(appErr.Message)

	c.JSON(appErr.Status, models.ErrorResponse{
		OK:      false,
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// NoRoute answers unknown /api paths with the JSON envelope and serves the
// site from staticDir for everything else, falling back to index.html.
func (h *Handlers) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		h.respondError(c, middleware.GetRequestID(c), apperrors.NotFound("API route not found."))
		return
	}
	if h.staticDir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		h.respondError(c, middleware.GetRequestID(c), apperrors.NotFound("Not found."))
		return
	}

	file := filepath.Join(h.staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}
	if info, err := os.Stat(file + ".html"); err == nil && !info.IsDir() {
		c.File(file + ".html")
		return
	}
	c.File(filepath.Join(h.staticDir, "index.html"))
}

// Recovery turns panics into the INTERNAL_ERROR envelope.
func (h *Handlers) Recovery(c *gin.Context, recovered any) {
	h.respondError(c, middleware.GetRequestID(c), apperrors.Internal(fmt.Errorf("panic: %v", recovered)))
	c.Abort()
}
