package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wagecore/internal/domain/history"
	"wagecore/internal/domain/payroll"
	"wagecore/internal/domain/tax"
	"wagecore/internal/platform/metrics"
	"wagecore/internal/transport/http/api"
	"wagecore/internal/transport/http/middleware"
	"wagecore/internal/transport/http/shared"
)

type Handler struct {
	Engine   *payroll.Engine
	History  *history.Store
	Payslips *payroll.PayslipService
	Metrics  *metrics.Collector
}

// NewHandler wires the payroll endpoints. history may be nil when no
// database is configured; run persistence and payslips are then disabled.
func NewHandler(engine *payroll.Engine, store *history.Store, payslips *payroll.PayslipService, collector *metrics.Collector) *Handler {
	return &Handler{Engine: engine, History: store, Payslips: payslips, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/payroll/runs", h.HandleComputeRun)
	r.Get("/payroll/runs", h.HandleListRuns)
	r.Get("/payroll/runs/{runID}", h.HandleGetRun)
	r.Get("/payroll/runs/{runID}/payslips/{employeeID}", h.HandlePayslip)
}

type periodPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type runPayload struct {
	Employees []payroll.Employee           `json:"employees"`
	PayItems  map[string][]payroll.PayItem `json:"payItems"`
	PayPeriod periodPayload                `json:"payPeriod"`
}

func (h *Handler) HandleComputeRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload runPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	validator := shared.NewValidator()
	if len(payload.Employees) == 0 {
		validator.Add("employees", "at least one employee is required")
	}
	start, _ := validator.Date("payPeriod.start", payload.PayPeriod.Start)
	end, _ := validator.Date("payPeriod.end", payload.PayPeriod.End)
	validator.DateOrder("payPeriod.start", start, "payPeriod.end", end)
	if validator.Reject(w, requestID) {
		return
	}

	req := payroll.PayRunRequest{
		Employees: payload.Employees,
		PayItems:  payload.PayItems,
		PayPeriod: payroll.PayPeriod{Start: start, End: end},
	}

	began := time.Now()
	result, err := h.Engine.Compute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrInvalidPeriod):
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		case errors.Is(err, tax.ErrRegistryNotFrozen):
			api.Fail(w, http.StatusServiceUnavailable, "engine_not_ready", "tax rule registry is not ready", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "internal_error", "pay run failed", requestID)
		}
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordRun(len(result.Results), result.Summary.FailureCount, time.Since(began))
	}

	if h.History != nil {
		runID, err := h.History.SaveRun(r.Context(), result)
		if err != nil {
			slog.Warn("pay run persist failed", "err", err, "requestId", requestID)
		} else {
			result.RunID = runID
		}
	}

	api.Success(w, result, requestID)
}

func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.History == nil {
		api.Fail(w, http.StatusServiceUnavailable, "history_disabled", "run history requires a configured database", requestID)
		return
	}
	page := shared.ParseRunPage(r)
	runs, err := h.History.ListRuns(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list runs", requestID)
		return
	}
	api.Success(w, map[string]any{"runs": runs}, requestID)
}

func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.History == nil {
		api.Fail(w, http.StatusServiceUnavailable, "history_disabled", "run history requires a configured database", requestID)
		return
	}
	runID := chi.URLParam(r, "runID")
	result, err := h.History.GetRun(r.Context(), runID)
	if errors.Is(err, history.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "pay run not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load run", requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) HandlePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.History == nil || h.Payslips == nil {
		api.Fail(w, http.StatusServiceUnavailable, "history_disabled", "payslips require a configured database", requestID)
		return
	}
	runID := chi.URLParam(r, "runID")
	employeeID := chi.URLParam(r, "employeeID")
	result, period, err := h.History.GetResult(r.Context(), runID, employeeID)
	if errors.Is(err, history.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "pay run result not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load result", requestID)
		return
	}
	if result.Outcome != payroll.OutcomeSuccess {
		api.Fail(w, http.StatusConflict, "no_payslip", "no payslip for a failed calculation", requestID)
		return
	}
	data, err := h.Payslips.Render(runID, period, result)
	if err != nil {
		slog.Warn("payslip render failed", "err", err, "runId", runID, "employeeId", employeeID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "payslip generation failed", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.pdf", runID, employeeID))
	_, _ = w.Write(data)
}
