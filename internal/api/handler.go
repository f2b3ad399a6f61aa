// Package api exposes the validation pipeline over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/photo"
	"github.com/Sunny2307/GreenShield/internal/pipeline"
	"github.com/Sunny2307/GreenShield/internal/report"
)

// ReportHandler handles HTTP requests for report validation.
type ReportHandler struct {
	pipe   *pipeline.Pipeline
	logger *zap.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(pipe *pipeline.Pipeline, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{pipe: pipe, logger: logger}
}

// Register mounts the report routes on the given group.
func (h *ReportHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/validate-report", h.ValidateReport)
	rg.GET("/status", h.Status)
	rg.GET("/statistics", h.Statistics)
}

// validateResponse wraps the decision with request-level validation context.
type validateResponse struct {
	Decision   any                    `json:"decision"`
	Quality    *report.QualityMetrics `json:"quality,omitempty"`
	Validation report.InputValidation `json:"validation"`
	Satellite  string                 `json:"satellite_source"`
	Degraded   bool                   `json:"degraded"`
	ElapsedMS  int64                  `json:"elapsed_ms"`
}

// ValidateReport runs one submission through the pipeline.
//
// Status mapping: malformed or structurally invalid input is 400; evidence
// that parsed but fails the quality or geotag gates is 422; an unreachable
// photo URL is 502; anything else is 500.
func (h *ReportHandler) ValidateReport(c *gin.Context) {
	var raw report.RawReport
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	res, err := h.pipe.Process(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, validateResponse{
		Decision:   res.Decision,
		Quality:    res.Report.Quality,
		Validation: res.Validation,
		Satellite:  string(res.SatelliteSource),
		Degraded:   res.Degraded,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	})
}

func (h *ReportHandler) writeError(c *gin.Context, err error) {
	var (
		missingField *report.MissingFieldError
		badTimestamp *report.InvalidTimestampError
		badFields    *report.InvalidFieldError
		badFormat    *photo.UnsupportedFormatError
		noGeotag     *photo.NotGeotaggedError
		lowQuality   *photo.LowQualityError
		fetchFailed  *photo.FetchError
		pipeErr      *pipeline.Error
	)

	switch {
	case errors.As(err, &missingField), errors.As(err, &badTimestamp), errors.As(err, &badFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &badFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report fields", "details": badFields.Errors})
	case errors.As(err, &noGeotag), errors.As(err, &lowQuality):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &fetchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &pipeErr):
		h.logger.Error("pipeline failure", zap.String("report_id", pipeErr.ReportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report processing failed", "report_id": pipeErr.ReportID})
	default:
		h.logger.Error("unexpected failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Status reports pipeline component health.
func (h *ReportHandler) Status(c *gin.Context) {
	st := h.pipe.Status(c.Request.Context())
	code := http.StatusOK
	if st.Status == "error" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}

// Statistics serves the aggregate statistics shape.
func (h *ReportHandler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.pipe.Statistics())
}

// ServiceInfo serves the root service descriptor.
func ServiceInfo(version string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":        "greenshield-validation",
			"version":        version,
			"uptime_seconds": time.Since(started).Seconds(),
			"endpoints": []string{
				"POST /api/v1/validate-report",
				"GET /api/v1/status",
				"GET /api/v1/statistics",
				"GET /healthz",
				"GET /metrics",
			},
		})
	}
}
