package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/core/services"
	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
	"github.com/hsnesn/staffrota/pkg/report"
)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	Database   db.Database
	Dispatcher *notify.Dispatcher
	Logger     *zap.Logger

	// OverviewMonths is the configured lookahead used when a coverage
	// overview request carries no monthsAhead parameter. Zero falls
	// through to the service default.
	OverviewMonths int
}

func callerFrom(r *http.Request) services.Caller {
	return services.Caller{
		UserID: r.Header.Get("X-User-Id"),
		Role:   r.Header.Get("X-User-Role"),
	}
}

func scopeFromQuery(r *http.Request) db.ScopeKey {
	return db.ScopeKey{
		DepartmentID: r.URL.Query().Get("departmentId"),
		ProgramID:    r.URL.Query().Get("programId"),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps error kinds to statuses and a machine-readable code so
// clients can choose between a retry affordance and an informational
// message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "store_failure"

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrNoPriorData):
		status, code = http.StatusConflict, "no_prior_data"
	case errors.Is(err, services.ErrNothingToApprove):
		status, code = http.StatusConflict, "nothing_to_approve"
	default:
		h.Logger.Error("Operation failed", zap.Error(err))
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body", Code: "invalid_input"})
		return false
	}
	return true
}

func (h *Handler) ResolveRequirements(w http.ResponseWriter, r *http.Request) {
	result, err := services.ResolveRequirements(r.Context(), h.Database, h.Logger, callerFrom(r), services.ResolveRequirementsInput{
		From:  r.URL.Query().Get("from"),
		To:    r.URL.Query().Get("to"),
		Scope: scopeFromQuery(r),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows := make([]requirementRow, 0, len(result))
	for _, requirement := range result {
		rows = append(rows, requirementRow(requirement))
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) MaterializeRecurring(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if !h.decode(w, r, &req) {
		return
	}

	inserted, err := services.MaterializeRecurring(r.Context(), h.Database, h.Logger, callerFrom(r), services.MaterializeRecurringInput{
		Month: req.Month,
		Scope: req.Scope.key(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, countResponse{Count: inserted})
}

func (h *Handler) FetchAvailability(w http.ResponseWriter, r *http.Request) {
	var scope *db.ScopeKey
	if r.URL.Query().Get("departmentId") != "" {
		key := scopeFromQuery(r)
		scope = &key
	}

	records, err := services.FetchAvailability(r.Context(), h.Database, h.Logger, callerFrom(r), services.FetchAvailabilityInput{
		UserID: r.URL.Query().Get("userId"),
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Scope:  scope,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows := make([]availabilityRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, availabilityRow{
			UserID: record.UserID,
			Date:   record.Date,
			Role:   record.Role,
			Scope:  scopeParams{DepartmentID: record.Scope.DepartmentID, ProgramID: record.Scope.ProgramID},
		})
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) SubmitAvailability(w http.ResponseWriter, r *http.Request) {
	var req submitAvailabilityRequest
	if !h.decode(w, r, &req) {
		return
	}

	count, err := services.SubmitAvailability(r.Context(), h.Database, h.Logger, callerFrom(r), services.SubmitAvailabilityInput{
		UserID: req.UserID,
		Dates:  req.Dates,
		Role:   req.Role,
		Scope:  req.Scope.key(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) CopyPreviousMonth(w http.ResponseWriter, r *http.Request) {
	var req copyPreviousRequest
	if !h.decode(w, r, &req) {
		return
	}

	count, err := services.CopyPreviousMonth(r.Context(), h.Database, h.Logger, callerFrom(r), services.CopyPreviousMonthInput{
		UserID: req.UserID,
		Month:  req.Month,
		Scope:  req.Scope.key(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) ClearMonth(w http.ResponseWriter, r *http.Request) {
	var req clearMonthRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := services.ClearMonth(r.Context(), h.Database, h.Dispatcher, h.Logger, callerFrom(r), services.ClearMonthInput{
		Scope: req.Scope.key(),
		Month: req.Month,
		Kind:  req.Kind,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, clearMonthResponse(*result))
}

func (h *Handler) SaveAssignments(w http.ResponseWriter, r *http.Request) {
	var req saveAssignmentsRequest
	if !h.decode(w, r, &req) {
		return
	}

	drafts := make([]services.AssignmentDraft, 0, len(req.Assignments))
	for _, draft := range req.Assignments {
		drafts = append(drafts, services.AssignmentDraft(draft))
	}

	count, err := services.SaveAssignments(r.Context(), h.Database, h.Logger, callerFrom(r), services.SaveAssignmentsInput{
		Scope:       req.Scope.key(),
		Month:       req.Month,
		Assignments: drafts,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) ApproveAssignments(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := services.ApproveAssignments(r.Context(), h.Database, h.Dispatcher, h.Logger, callerFrom(r), services.ApproveAssignmentsInput{
		Scope: req.Scope.key(),
		Month: req.Month,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, approveResponse{Approved: result.ApprovedCount, Notified: result.Notified})
}

func (h *Handler) ComputeCoverage(w http.ResponseWriter, r *http.Request) {
	result, err := services.ComputeCoverage(r.Context(), h.Database, h.Logger, callerFrom(r), services.ComputeCoverageInput{
		From:  r.URL.Query().Get("from"),
		To:    r.URL.Query().Get("to"),
		Scope: scopeFromQuery(r),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCoverageResponse(result))
}

func (h *Handler) CoverageOverview(w http.ResponseWriter, r *http.Request) {
	monthsAhead := h.OverviewMonths
	if raw := r.URL.Query().Get("monthsAhead"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "monthsAhead must be a number", Code: "invalid_input"})
			return
		}
		monthsAhead = parsed
	}

	rows, err := services.CoverageOverview(r.Context(), h.Database, h.Logger, callerFrom(r), services.CoverageOverviewInput{
		MonthsAhead: monthsAhead,
		StartMonth:  r.URL.Query().Get("startMonth"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		workbook, err := report.CoverageOverviewWorkbook(rows)
		if err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="coverage-overview.xlsx"`)
		w.Write(workbook)
		return
	}

	resp := make([]overviewRow, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, overviewRow{
			Month:          row.Month,
			Scope:          scopeParams{DepartmentID: row.Scope.DepartmentID, ProgramID: row.Scope.ProgramID},
			DepartmentName: row.DepartmentName,
			ProgramName:    row.ProgramName,
			Role:           row.Role,
			SlotsShort:     row.SlotsShort,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RankCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := services.RankCandidates(r.Context(), h.Database, h.Logger, callerFrom(r), services.RankCandidatesInput{
		Scope: scopeFromQuery(r),
		Role:  r.URL.Query().Get("role"),
		Date:  r.URL.Query().Get("date"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows := make([]candidateRow, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, candidateRow(candidate))
	}
	h.writeJSON(w, http.StatusOK, rows)
}
