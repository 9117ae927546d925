package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	portssvc "github.com/emretit/paftamobile-sub007/internal/core/ports/services"
	"github.com/emretit/paftamobile-sub007/internal/dto"
	"github.com/emretit/paftamobile-sub007/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests for cached exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateReaderSvc
	precision           int32
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateReaderSvc, precision int32) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		precision:           precision,
	}
}

// registerExchangeRateRoutes registers the read routes for exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateReaderSvc, precision int32) {
	h := newExchangeRateHandler(exchangeRateService, precision)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.GET("/latest", h.getLatest)
		exchangeRates.GET("/convert", h.convert)
		exchangeRates.GET("/dates", h.listDates)
		exchangeRates.GET("/:date", h.getForDate)
	}
}

// getLatest godoc
// @Summary Get the latest exchange rates
// @Description Returns the newest cached rate set. On an empty cache one ingestion is run first.
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} dto.RateSetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Rates temporarily unavailable"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rates"
// @Security BearerAuth
// @Router /exchange-rates/latest [get]
func (h *exchangeRateHandler) getLatest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	set, err := h.exchangeRateService.GetLatest(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to retrieve exchange rates")
		return
	}

	logger.Debug("Latest exchange rates served", slog.Time("effective_date", set.EffectiveDate))
	c.JSON(http.StatusOK, dto.ToRateSetResponse(set))
}

// getForDate godoc
// @Summary Get exchange rates of a date
// @Description Returns the cached rate set of one effective date
// @Tags exchange rates
// @Produce  json
// @Param   date path string true "Effective date (YYYY-MM-DD)"
// @Success 200 {object} dto.RateSetResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No rates stored for the date"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rates"
// @Security BearerAuth
// @Router /exchange-rates/{date} [get]
func (h *exchangeRateHandler) getForDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	raw := c.Param("date")

	date, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		logger.Warn("Invalid date parameter", slog.String("date", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be formatted as YYYY-MM-DD"})
		return
	}

	set, err := h.exchangeRateService.GetForDate(c.Request.Context(), date)
	if err != nil {
		respondWithServiceError(c, logger.With(slog.String("date", raw)), err, "Failed to retrieve exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateSetResponse(set))
}

// listDates godoc
// @Summary List cached dates
// @Description Returns the effective dates held in the cache, newest first
// @Tags exchange rates
// @Produce  json
// @Param   limit query int false "Maximum number of dates (max 100)"
// @Success 200 {object} dto.DatesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list dates"
// @Security BearerAuth
// @Router /exchange-rates/dates [get]
func (h *exchangeRateHandler) listDates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	dates, err := h.exchangeRateService.ListDates(c.Request.Context(), params.Limit)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list dates")
		return
	}

	c.JSON(http.StatusOK, dto.ToDatesResponse(dates))
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two tracked currencies using the latest forex selling rates
// @Tags exchange rates
// @Produce  json
// @Param   amount query string true "Amount to convert"
// @Param   from   query string true "Source currency code" MinLength(3) MaxLength(3)
// @Param   to     query string true "Target currency code" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Currency not in the latest set"
// @Failure 503 {object} map[string]string "Rates temporarily unavailable"
// @Failure 500 {object} map[string]string "Failed to convert"
// @Security BearerAuth
// @Router /exchange-rates/convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a decimal number"})
		return
	}

	logger = logger.With(slog.String("from", req.From), slog.String("to", req.To))
	conversion, err := h.exchangeRateService.Convert(c.Request.Context(), amount, req.From, req.To)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponse(conversion, h.precision))
}

// respondWithServiceError maps service errors to HTTP status codes.
func respondWithServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var fetchErr *apperrors.FetchError
	var parseErr *apperrors.ParseError

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnavailable):
		logger.Error("Exchange rates unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rates are temporarily unavailable"})
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		logger.Error("Upstream feed failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
