package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fuelrecon/internal/domain"
	"fuelrecon/internal/service"
	"fuelrecon/pkg/logger"
	"fuelrecon/pkg/response"
)

type ReconciliationHandler struct {
	service service.ReconciliationService
}

func NewReconciliationHandler(service service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

type CloseDayRequest struct {
	StationID string  `json:"stationId" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	ClosedBy  string  `json:"closedBy" binding:"required"`
	Notes     *string `json:"notes"`
	Override  bool    `json:"override"`
}

type CashReportRequest struct {
	StationID     string           `json:"stationId" binding:"required"`
	Date          string           `json:"date" binding:"required"`
	CashCollected decimal.Decimal  `json:"cashCollected"`
	CardCollected decimal.Decimal  `json:"cardCollected"`
	UpiCollected  decimal.Decimal  `json:"upiCollected"`
	CreditGiven   *decimal.Decimal `json:"creditGiven"`
}

// GetSummary godoc
// @Summary Get reconciliation summary for a station-day
// @Description System-calculated vs user-entered totals with per-channel differences and severities
// @Tags reconciliation
// @Produce json
// @Param stationId query string true "Station ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/reconciliation/summary [get]
func (h *ReconciliationHandler) GetSummary(c *gin.Context) {
	stationID := c.Query("stationId")
	date := c.Query("date")
	if stationID == "" || date == "" {
		response.BadRequest(c, "stationId and date are required", "")
		return
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		response.BadRequest(c, "Invalid date format", "Use YYYY-MM-DD format")
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), stationID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation summary retrieved successfully", summary)
}

// CloseDay godoc
// @Summary Close a business day
// @Description Freezes the day's reconciliation; irreversible. Fails with a reason when the day is already closed, too old, or not yet over in station-local time.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body CloseDayRequest true "Close-day request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/reconciliation/close [post]
func (h *ReconciliationHandler) CloseDay(c *gin.Context) {
	var req CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid close-day request")
		response.ValidationError(c, err.Error())
		return
	}
	if _, err := time.Parse(domain.DateLayout, req.Date); err != nil {
		response.BadRequest(c, "Invalid date format", "Use YYYY-MM-DD format")
		return
	}

	record, err := h.service.CloseDay(c.Request.Context(), service.CloseDayRequest{
		StationID: req.StationID,
		Date:      req.Date,
		ClosedBy:  req.ClosedBy,
		Notes:     req.Notes,
		Override:  req.Override,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Business day closed successfully", record)
}

// GetDashboard godoc
// @Summary Fleet-wide reconciliation dashboard for the current day
// @Tags reconciliation
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/reconciliation/dashboard [get]
func (h *ReconciliationHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

// SaveCashReport godoc
// @Summary Submit an attendant cash report for a station-day
// @Description Stores the report as a draft against the pending record; rejected once the day is closed
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body CashReportRequest true "Cash report"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/reconciliation/cash-reports [post]
func (h *ReconciliationHandler) SaveCashReport(c *gin.Context) {
	var req CashReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid cash report")
		response.ValidationError(c, err.Error())
		return
	}

	record, err := h.service.SaveCashReport(c.Request.Context(), service.CashReportRequest{
		StationID:     req.StationID,
		Date:          req.Date,
		CashCollected: req.CashCollected,
		CardCollected: req.CardCollected,
		UpiCollected:  req.UpiCollected,
		CreditGiven:   req.CreditGiven,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cash report saved successfully", record)
}

// ListRecords godoc
// @Summary List reconciliation records for a station over a date range
// @Tags reconciliation
// @Produce json
// @Param stationId query string true "Station ID"
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconciliation/records [get]
func (h *ReconciliationHandler) ListRecords(c *gin.Context) {
	stationID, startDate, endDate, ok := h.rangeParams(c)
	if !ok {
		return
	}

	records, err := h.service.ListRecords(c.Request.Context(), stationID, startDate, endDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation records retrieved successfully", records)
}

// GetAnalytics godoc
// @Summary Discrepancy analytics over closed records
// @Tags reconciliation
// @Produce json
// @Param stationId query string true "Station ID"
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconciliation/analytics [get]
func (h *ReconciliationHandler) GetAnalytics(c *gin.Context) {
	stationID, startDate, endDate, ok := h.rangeParams(c)
	if !ok {
		return
	}

	analytics, err := h.service.GetAnalytics(c.Request.Context(), stationID, startDate, endDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation analytics retrieved successfully", analytics)
}

// ListOpenDays godoc
// @Summary List past days inside the closure window still awaiting closure
// @Tags reconciliation
// @Produce json
// @Param stationId query string false "Station ID (all active stations when omitted)"
// @Success 200 {object} response.Response
// @Router /api/v1/reconciliation/open [get]
func (h *ReconciliationHandler) ListOpenDays(c *gin.Context) {
	openDays, err := h.service.ListOpenDays(c.Request.Context(), c.Query("stationId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Open days retrieved successfully", gin.H{"openDays": openDays})
}

func (h *ReconciliationHandler) rangeParams(c *gin.Context) (stationID, startDate, endDate string, ok bool) {
	stationID = c.Query("stationId")
	startDate = c.Query("startDate")
	endDate = c.Query("endDate")
	if stationID == "" || startDate == "" || endDate == "" {
		response.BadRequest(c, "stationId, startDate and endDate are required", "")
		return "", "", "", false
	}
	for _, date := range []string{startDate, endDate} {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			response.BadRequest(c, "Invalid date format", "Use YYYY-MM-DD format")
			return "", "", "", false
		}
	}
	return stationID, startDate, endDate, true
}

// respondError maps the service's typed errors onto specific HTTP responses
// so expected outcomes like WindowExceeded explain themselves to the caller.
func (h *ReconciliationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, "Station or record not found")
	case errors.Is(err, domain.ErrAlreadyClosed):
		response.Conflict(c, "ALREADY_CLOSED", "This day is already closed", err.Error())
	case errors.Is(err, domain.ErrWindowExceeded):
		response.UnprocessableEntity(c, "WINDOW_EXCEEDED", "Backdated closure window exceeded", err.Error())
	case errors.Is(err, domain.ErrDayNotYetComplete):
		response.UnprocessableEntity(c, "DAY_NOT_COMPLETE", "Business day not yet complete", err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		response.ServiceUnavailable(c, "Upstream temporarily unavailable, retry shortly", err.Error())
	case errors.Is(err, service.ErrInvalidReport):
		response.ValidationError(c, err.Error())
	default:
		logger.GetLogger().WithError(err).Error("Unhandled reconciliation error")
		response.InternalError(c, "Request failed", err.Error())
	}
}
