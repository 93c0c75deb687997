package api

import (
	"github.com/hsnesn/staffrota/pkg/core/services"
	"github.com/hsnesn/staffrota/pkg/db"
)

// scopeParams is the JSON shape of a scope key. ProgramID empty or absent
// means the whole department.
type scopeParams struct {
	DepartmentID string `json:"departmentId"`
	ProgramID    string `json:"programId,omitempty"`
}

func (p scopeParams) key() db.ScopeKey {
	return db.ScopeKey{DepartmentID: p.DepartmentID, ProgramID: p.ProgramID}
}

type materializeRequest struct {
	Scope scopeParams `json:"scope"`
	Month string      `json:"month"`
}

type submitAvailabilityRequest struct {
	UserID string      `json:"userId"`
	Dates  []string    `json:"dates"`
	Role   string      `json:"role"`
	Scope  scopeParams `json:"scope"`
}

type copyPreviousRequest struct {
	UserID string      `json:"userId"`
	Month  string      `json:"month"`
	Scope  scopeParams `json:"scope"`
}

type clearMonthRequest struct {
	Scope scopeParams `json:"scope"`
	Month string      `json:"month"`
	Kind  string      `json:"kind"`
}

type assignmentDraft struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Role   string `json:"role"`
}

type saveAssignmentsRequest struct {
	Scope       scopeParams       `json:"scope"`
	Month       string            `json:"month"`
	Assignments []assignmentDraft `json:"assignments"`
}

type approveRequest struct {
	Scope scopeParams `json:"scope"`
	Month string      `json:"month"`
}

type countResponse struct {
	Count int `json:"count"`
}

type approveResponse struct {
	Approved int `json:"approved"`
	Notified int `json:"notified"`
}

type clearMonthResponse struct {
	AvailabilityDeleted int `json:"availabilityDeleted"`
	RequirementsDeleted int `json:"requirementsDeleted"`
	Notified            int `json:"notified"`
}

type requirementRow struct {
	Date        string `json:"date"`
	Role        string `json:"role"`
	CountNeeded int    `json:"countNeeded"`
}

type availabilityRow struct {
	UserID string      `json:"userId"`
	Date   string      `json:"date"`
	Role   string      `json:"role"`
	Scope  scopeParams `json:"scope"`
}

type coverageRow struct {
	Date      string   `json:"date"`
	Role      string   `json:"role"`
	Needed    int      `json:"needed"`
	Filled    int      `json:"filled"`
	Short     int      `json:"short"`
	Blackouts []string `json:"blackouts,omitempty"`
}

type coverageResponse struct {
	Rows        []coverageRow `json:"rows"`
	SlotsFilled int           `json:"slotsFilled"`
	SlotsShort  int           `json:"slotsShort"`
}

type overviewRow struct {
	Month          string      `json:"month"`
	Scope          scopeParams `json:"scope"`
	DepartmentName string      `json:"departmentName"`
	ProgramName    string      `json:"programName,omitempty"`
	Role           string      `json:"role"`
	SlotsShort     int         `json:"slotsShort"`
}

type candidateRow struct {
	UserID          string `json:"userId"`
	AssignmentCount int    `json:"assignmentCount"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toCoverageResponse(result *services.CoverageResult) coverageResponse {
	resp := coverageResponse{
		Rows:        make([]coverageRow, 0, len(result.Rows)),
		SlotsFilled: result.SlotsFilled,
		SlotsShort:  result.SlotsShort,
	}
	for _, row := range result.Rows {
		resp.Rows = append(resp.Rows, coverageRow(row))
	}
	return resp
}
