package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fleetops/payroll-sync/internal/http/middleware"
	"github.com/fleetops/payroll-sync/internal/model"
	"github.com/fleetops/payroll-sync/internal/service"
)

type Handler struct {
	sync     *service.SyncService
	submit   *service.SubmitService
	settings *service.SettingsService
	reports  *service.ReportService
	log      zerolog.Logger
}

func NewHandler(
	sync *service.SyncService,
	submit *service.SubmitService,
	settings *service.SettingsService,
	reports *service.ReportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{sync: sync, submit: submit, settings: settings, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/deel")
	api.Use(authMiddleware)

	// The cron endpoint is hit by the platform scheduler under its own
	// service identity, gated only on the stored auto-sync flag.
	api.GET("/cron", h.runCron)

	gated := api.Group("/")
	gated.Use(middleware.RequirePayrollRole())
	gated.POST("/sync-contracts", h.syncContracts)
	gated.GET("/sync-contracts", h.syncStats)
	gated.POST("/submit-timesheets", h.submitTimesheets)
	gated.GET("/submit-timesheets", h.submitStats)
	gated.GET("/settings", h.getSettings)
	gated.POST("/settings", h.updateSettings)
	gated.POST("/report", h.exportReport)
	gated.POST("/report/pdf", h.exportReportPDF)
}

type syncRequest struct {
	EntryStatus       string   `json:"entryStatus"`
	ContractStatuses  []string `json:"contractStatuses"`
	OverwriteExisting bool     `json:"overwriteExisting"`
}

func (h *Handler) syncContracts(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entryStatus, ok := h.entryStatusOrDefault(c, req.EntryStatus)
	if !ok {
		return
	}

	result, err := h.sync.SyncContracts(c.Request.Context(), service.SyncOptions{
		EntryStatus:       entryStatus,
		ContractStatuses:  req.ContractStatuses,
		OverwriteExisting: req.OverwriteExisting,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "sync completed with errors",
			"result":  result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "contract sync completed",
		"result":  result,
	})
}

func (h *Handler) syncStats(c *gin.Context) {
	stats, err := h.sync.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type submitRequest struct {
	EntryStatus  string `json:"entryStatus"`
	AutoApprove  bool   `json:"autoApprove"`
	BatchSize    int    `json:"batchSize"`
	BatchDelayMs int    `json:"batchDelayMs"`
}

func (h *Handler) submitTimesheets(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entryStatus, ok := h.entryStatusOrDefault(c, req.EntryStatus)
	if !ok {
		return
	}

	result, err := h.submit.SubmitTimesheets(c.Request.Context(), service.SubmitOptions{
		EntryStatus: entryStatus,
		AutoApprove: req.AutoApprove,
		BatchSize:   req.BatchSize,
		BatchDelay:  time.Duration(req.BatchDelayMs) * time.Millisecond,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "submission completed with errors",
			"result":  result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "timesheet submission completed",
		"result":  result,
	})
}

func (h *Handler) submitStats(c *gin.Context) {
	stats, err := h.submit.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) getSettings(c *gin.Context) {
	view, err := h.settings.View(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateSettingsRequest struct {
	APIToken        *string `json:"apiToken"`
	BaseURL         *string `json:"baseUrl"`
	AutoSyncEnabled *bool   `json:"autoSyncEnabled"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.settings.Update(c.Request.Context(), service.UpdateSettingsInput{
		APIToken:        req.APIToken,
		BaseURL:         req.BaseURL,
		AutoSyncEnabled: req.AutoSyncEnabled,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deel settings updated"})
}

func (h *Handler) runCron(c *gin.Context) {
	ctx := c.Request.Context()

	enabled, err := h.settings.AutoSyncEnabled(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !enabled {
		c.JSON(http.StatusOK, gin.H{
			"message": "automated sync is disabled in deel settings",
			"enabled": false,
		})
		return
	}

	pending := model.EntryStatusPending

	syncResult, err := h.sync.SyncContracts(ctx, service.SyncOptions{EntryStatus: &pending})
	if err != nil {
		h.handleError(c, err)
		return
	}

	submitResult, err := h.submit.SubmitTimesheets(ctx, service.SubmitOptions{
		EntryStatus: &pending,
		BatchSize:   20,
		BatchDelay:  500 * time.Millisecond,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "automated deel processing completed",
		"results": gin.H{
			"sync":       syncResult,
			"submission": submitResult,
		},
	})
}

type reportRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportReport(c *gin.Context) {
	input, ok := h.bindReportInput(c)
	if !ok {
		return
	}

	result, err := h.reports.Excel(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) exportReportPDF(c *gin.Context) {
	input, ok := h.bindReportInput(c)
	if !ok {
		return
	}

	result, err := h.reports.PDF(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) bindReportInput(c *gin.Context) (service.ReportInput, bool) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.ReportInput{}, false
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return service.ReportInput{}, false
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return service.ReportInput{}, false
	}

	return service.ReportInput{PeriodStart: start, PeriodEnd: end}, true
}

// entryStatusOrDefault parses the requested status filter, defaulting to
// pending the way the manual trigger endpoints always have.
func (h *Handler) entryStatusOrDefault(c *gin.Context, raw string) (*model.EntryStatus, bool) {
	if strings.TrimSpace(raw) == "" {
		pending := model.EntryStatusPending
		return &pending, true
	}
	status, err := model.ParseEntryStatus(strings.TrimSpace(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &status, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTokenNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deel API token not configured, set it in deel settings"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
