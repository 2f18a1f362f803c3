package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/application/service"
	"github.com/garyjia/ggr-reconciler/internal/application/session"
	"github.com/garyjia/ggr-reconciler/internal/application/workflow"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	domainwf "github.com/garyjia/ggr-reconciler/internal/domain/workflow"
	"github.com/garyjia/ggr-reconciler/pkg/numtext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	reconciliation service.ReconciliationService
	export         *service.ExportService
	workbenches    *session.Manager
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		reconciliation: services.Reconciliation,
		export:         services.Export,
		workbenches:    services.Workbenches,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CompareRequest carries the EMS figures as typed, separators allowed
type CompareRequest struct {
	TotalGGR      string `json:"totalGGR"`
	TotalStake    string `json:"totalStake"`
	TotalBetCount string `json:"totalBetCount"`
}

func (r CompareRequest) input() service.EMSInput {
	return service.EMSInput{
		TotalGGR:      r.TotalGGR,
		TotalStake:    r.TotalStake,
		TotalBetCount: r.TotalBetCount,
	}
}

// RejectRequest carries the reason shown to the operator
type RejectRequest struct {
	Reason string `json:"reason"`
}

// SelectRequest picks the report a workbench works on
type SelectRequest struct {
	ReportID string `json:"reportId" binding:"required"`
}

// InputRequest is one edit of a workbench form field
type InputRequest struct {
	Field string `json:"field" binding:"required,oneof=totalGGR totalStake totalBetCount"`
	Text  string `json:"text"`
}

// FormatRequest is one keystroke against a formatted numeric field
type FormatRequest struct {
	Previous string `json:"previous"`
	Input    string `json:"input"`
}

// FormatResponse is the field value after the keystroke
type FormatResponse struct {
	Value    string `json:"value"`
	Accepted bool   `json:"accepted"`
}

// CompareResponse is a comparison result plus any follow-up warnings
type CompareResponse struct {
	*service.CompareOutcome
	ApprovalError       string `json:"approvalError,omitempty"`
	NotificationWarning string `json:"notificationWarning,omitempty"`
}

// TransitionResponse is a completed approve or reject
type TransitionResponse struct {
	*workflow.TransitionOutcome
	NotificationWarning string `json:"notificationWarning,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListPending handles GET /api/reports/pending
func (h *Handlers) ListPending(c *gin.Context) {
	reports, err := h.reconciliation.PendingReports(c.Request.Context(), authFrom(c))
	if err != nil {
		h.fail(c, "Failed to list pending reports", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reports})
}

// RefreshReports handles POST /api/reports/refresh
func (h *Handlers) RefreshReports(c *gin.Context) {
	reports, err := h.reconciliation.RefreshReports(c.Request.Context(), authFrom(c))
	if err != nil {
		h.fail(c, "Failed to refresh reports", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reports})
}

// GetReport handles GET /api/reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.reconciliation.GetReport(c.Request.Context(), authFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get report", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// Compare handles POST /api/reports/:id/compare
func (h *Handlers) Compare(c *gin.Context) {
	var req CompareRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.reconciliation.Compare(c.Request.Context(), authFrom(c), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, "Comparison failed", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toCompareResponse(outcome)})
}

// ExportComparison handles POST /api/reports/:id/compare/export
func (h *Handlers) ExportComparison(c *gin.Context) {
	var req CompareRequest
	if !h.bind(c, &req) {
		return
	}

	workbook, err := h.export.Export(c.Request.Context(), authFrom(c), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, "Export failed", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workbook.FileName))
	c.Data(http.StatusOK, xlsxContentType, workbook.Content)
}

// Approve handles POST /api/reports/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	outcome, err := h.reconciliation.Approve(c.Request.Context(), authFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "Approve failed", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toTransitionResponse(outcome)})
}

// Reject handles POST /api/reports/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var req RejectRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.reconciliation.Reject(c.Request.Context(), authFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		h.fail(c, "Reject failed", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toTransitionResponse(outcome)})
}

// History handles GET /api/reports/:id/reconciliations
func (h *Handlers) History(c *gin.Context) {
	records, err := h.reconciliation.History(c.Request.Context(), authFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to load reconciliation history", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// Transitions handles GET /api/reports/:id/transitions
func (h *Handlers) Transitions(c *gin.Context) {
	records, err := h.reconciliation.Transitions(c.Request.Context(), authFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to load transitions", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// WorkbenchState handles GET /api/workbench
func (h *Handlers) WorkbenchState(c *gin.Context) {
	wb := h.workbenches.Get(authFrom(c).UserID)
	c.JSON(http.StatusOK, Response{Success: true, Data: wb.Snapshot()})
}

// WorkbenchSelect handles POST /api/workbench/select
func (h *Handlers) WorkbenchSelect(c *gin.Context) {
	var req SelectRequest
	if !h.bind(c, &req) {
		return
	}

	auth := authFrom(c)
	if _, err := h.reconciliation.GetReport(c.Request.Context(), auth, req.ReportID); err != nil {
		h.fail(c, "Workbench select failed", err)
		return
	}

	snapshot := h.workbenches.Get(auth.UserID).Select(req.ReportID)
	c.JSON(http.StatusOK, Response{Success: true, Data: snapshot})
}

// WorkbenchInput handles POST /api/workbench/input
func (h *Handlers) WorkbenchInput(c *gin.Context) {
	var req InputRequest
	if !h.bind(c, &req) {
		return
	}

	wb := h.workbenches.Get(authFrom(c).UserID)
	if _, err := wb.Input(req.Field, req.Text); err != nil {
		h.fail(c, "Workbench input failed", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: wb.Snapshot()})
}

// WorkbenchCompare handles POST /api/workbench/compare
func (h *Handlers) WorkbenchCompare(c *gin.Context) {
	auth := authFrom(c)
	outcome, err := h.workbenches.Get(auth.UserID).Compare(c.Request.Context(), auth)
	if err != nil {
		h.fail(c, "Workbench compare failed", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toCompareResponse(outcome)})
}

// WorkbenchReset handles POST /api/workbench/reset
func (h *Handlers) WorkbenchReset(c *gin.Context) {
	wb := h.workbenches.Get(authFrom(c).UserID)
	wb.Reset()
	c.JSON(http.StatusOK, Response{Success: true, Data: wb.Snapshot()})
}

// FormatNumber handles POST /api/numtext/format
func (h *Handlers) FormatNumber(c *gin.Context) {
	var req FormatRequest
	if !h.bind(c, &req) {
		return
	}

	accepted := numtext.Accept(req.Input)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: FormatResponse{
			Value:    numtext.Apply(req.Previous, req.Input),
			Accepted: accepted,
		},
	})
}

func (h *Handlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Info("Invalid request body", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return false
	}
	return true
}

// fail maps an application error onto a status code and writes it
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	} else {
		h.logger.Info(msg, "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	var apiErr *port.APIError
	switch {
	case service.IsValidationError(err),
		errors.Is(err, session.ErrUnknownField),
		errors.Is(err, session.ErrNoReportSelected):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainwf.ErrInvalidTransition),
		errors.Is(err, domainwf.ErrInvalidState),
		errors.Is(err, domainwf.ErrGuardFailed),
		errors.Is(err, workflow.ErrTransitionInProgress),
		errors.Is(err, session.ErrStaleResult):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrTransitionPersistence), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toCompareResponse(outcome *service.CompareOutcome) CompareResponse {
	resp := CompareResponse{CompareOutcome: outcome}
	if outcome.ApprovalErr != nil {
		resp.ApprovalError = outcome.ApprovalErr.Error()
	}
	if outcome.NotificationErr != nil {
		resp.NotificationWarning = outcome.NotificationErr.Error()
	}
	return resp
}

func toTransitionResponse(outcome *workflow.TransitionOutcome) TransitionResponse {
	resp := TransitionResponse{TransitionOutcome: outcome}
	if outcome.NotificationErr != nil {
		resp.NotificationWarning = outcome.NotificationErr.Error()
	}
	return resp
}
