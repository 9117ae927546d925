package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/emretit/paftamobile-sub007/internal/core/ports/services"
	"github.com/emretit/paftamobile-sub007/internal/dto"
	"github.com/emretit/paftamobile-sub007/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler serves the privileged ingestion and scheduling routes.
type adminHandler struct {
	exchangeRateService portssvc.ExchangeRateAdminSvc
	scheduleService     portssvc.ScheduleSvc
}

func newAdminHandler(ers portssvc.ExchangeRateAdminSvc, ss portssvc.ScheduleSvc) *adminHandler {
	return &adminHandler{
		exchangeRateService: ers,
		scheduleService:     ss,
	}
}

// registerAdminRoutes registers routes that require the admin key.
// refreshLimit guards the manual ingestion trigger.
func registerAdminRoutes(rg *gin.RouterGroup, ers portssvc.ExchangeRateAdminSvc, ss portssvc.ScheduleSvc, refreshLimit gin.HandlerFunc) {
	h := newAdminHandler(ers, ss)

	rg.POST("/exchange-rates/refresh", refreshLimit, h.refresh)
	rg.GET("/schedule", h.getSchedule)
	rg.POST("/schedule/install", h.installSchedule)
	rg.GET("/ingestion-logs", h.listIngestionLogs)
}

// refresh godoc
// @Summary Refresh exchange rates
// @Description Runs one ingestion now and returns the stored rate set
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.RateSetResponse
// @Failure 403 {object} map[string]string "Admin key missing or invalid"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 502 {object} map[string]string "Feed fetch or parse failed"
// @Failure 500 {object} map[string]string "Failed to refresh exchange rates"
// @Security BearerAuth
// @Security AdminKey
// @Router /admin/exchange-rates/refresh [post]
func (h *adminHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received manual exchange rate refresh")

	set, err := h.exchangeRateService.Refresh(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to refresh exchange rates")
		return
	}

	logger.Info("Manual refresh stored rates",
		slog.Time("effective_date", set.EffectiveDate),
		slog.Int("count", len(set.Quotes)))
	c.JSON(http.StatusOK, dto.ToRateSetResponse(set))
}

// installSchedule godoc
// @Summary Install the ingestion schedule
// @Description Creates or updates the recurring ingestion trigger. Safe to call repeatedly.
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.ScheduleResponse
// @Failure 403 {object} map[string]string "Admin key missing or invalid"
// @Failure 500 {object} map[string]string "Failed to install schedule"
// @Security BearerAuth
// @Security AdminKey
// @Router /admin/schedule/install [post]
func (h *adminHandler) installSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	schedule, err := h.scheduleService.InstallSchedule(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to install schedule")
		return
	}

	logger.Info("Ingestion schedule installed",
		slog.String("job", schedule.Name),
		slog.Duration("interval", schedule.Interval))
	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// getSchedule godoc
// @Summary Get the ingestion schedule
// @Description Returns the installed recurring ingestion trigger
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.ScheduleResponse
// @Failure 403 {object} map[string]string "Admin key missing or invalid"
// @Failure 404 {object} map[string]string "Schedule not installed"
// @Failure 500 {object} map[string]string "Failed to get schedule"
// @Security BearerAuth
// @Security AdminKey
// @Router /admin/schedule [get]
func (h *adminHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to get schedule")
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// listIngestionLogs godoc
// @Summary List ingestion logs
// @Description Pages through the ingestion audit trail, newest first
// @Tags admin
// @Produce  json
// @Param   limit     query int    false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListIngestionLogsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 403 {object} map[string]string "Admin key missing or invalid"
// @Failure 500 {object} map[string]string "Failed to list ingestion logs"
// @Security BearerAuth
// @Security AdminKey
// @Router /admin/ingestion-logs [get]
func (h *adminHandler) listIngestionLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListIngestionLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListIngestionLogs", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.exchangeRateService.ListIngestionLogs(c.Request.Context(), params)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list ingestion logs")
		return
	}

	c.JSON(http.StatusOK, resp)
}
