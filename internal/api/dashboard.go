package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

// CategorySummaryView mirrors the persisted category names on purpose so the
// dashboard frontend can key directly off them.
type CategorySummaryView struct {
	Work    int64 `json:"Work"`
	Private int64 `json:"Private"`
	Idle    int64 `json:"Idle"`
}

// WorkDetailView is one row of the work breakdown.
type WorkDetailView struct {
	App      string `json:"app"`
	Duration int64  `json:"duration"`
}

// EmployeeReportView is the dashboard body for a single user.
type EmployeeReportView struct {
	Summary     CategorySummaryView `json:"summary"`
	WorkDetails []WorkDetailView    `json:"work_details"`
}

// TeamMemberSummaryView pairs a direct report with their summary.
type TeamMemberSummaryView struct {
	EmployeeID string              `json:"employee_id"`
	Name       *string             `json:"name,omitempty"`
	Summary    CategorySummaryView `json:"summary"`
}

// TeamReportView is the manager dashboard body.
type TeamReportView struct {
	TeamSummary CategorySummaryView     `json:"team_summary"`
	Members     []TeamMemberSummaryView `json:"members"`
}

// DepartmentSummaryView is one team rollup in the company view.
type DepartmentSummaryView struct {
	ManagerID   int64               `json:"department_manager_id"`
	ManagerName *string             `json:"department_manager_name,omitempty"`
	Summary     CategorySummaryView `json:"summary"`
}

// CompanyReportView is the CEO dashboard body.
type CompanyReportView struct {
	CompanySummary CategorySummaryView     `json:"company_summary"`
	ByDepartment   []DepartmentSummaryView `json:"by_department"`
}

func (h *Handler) dashboardMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.reports.EmployeeReport(r.Context(), user.ID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeReportView(report))
}

func (h *Handler) dashboardTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	manager, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.reports.TeamReport(r.Context(), manager.ID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	members := make([]TeamMemberSummaryView, 0, len(report.Members))
	for _, m := range report.Members {
		members = append(members, TeamMemberSummaryView{
			EmployeeID: m.EmployeeID,
			Name:       m.Name,
			Summary:    toSummaryView(m.Summary),
		})
	}
	writeJSON(w, http.StatusOK, TeamReportView{
		TeamSummary: toSummaryView(report.TeamSummary),
		Members:     members,
	})
}

func (h *Handler) dashboardTeamMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	manager, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	employeeID := strings.TrimPrefix(r.URL.Path, "/v1/dashboard/team/")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing employee id")
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.reports.TeamMemberReport(r.Context(), manager.ID, employeeID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrNotDirectReport) {
			writeError(w, http.StatusForbidden, "forbidden", "you can only view reports for your direct reports")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeReportView(report))
}

func (h *Handler) dashboardCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if user.Role != domain.RoleCEO {
		writeError(w, http.StatusForbidden, "forbidden", "requires CEO role")
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.reports.CompanyReport(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	departments := make([]DepartmentSummaryView, 0, len(report.ByDepartment))
	for _, d := range report.ByDepartment {
		departments = append(departments, DepartmentSummaryView{
			ManagerID:   d.ManagerID,
			ManagerName: d.ManagerName,
			Summary:     toSummaryView(d.Summary),
		})
	}
	writeJSON(w, http.StatusOK, CompanyReportView{
		CompanySummary: toSummaryView(report.CompanySummary),
		ByDepartment:   departments,
	})
}

func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return nil, false
	}
	if user.Role != domain.RoleManager {
		writeError(w, http.StatusForbidden, "forbidden", "requires manager role")
		return nil, false
	}
	return user, true
}

// dateRange parses the required start_date/end_date query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"

	from, err := time.Parse(layout, r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "start_date must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(layout, r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "end_date must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "validation_failed", "end_date must not precede start_date")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func toSummaryView(s domain.CategorySummary) CategorySummaryView {
	return CategorySummaryView{Work: s.Work, Private: s.Private, Idle: s.Idle}
}

func toEmployeeReportView(report *domain.EmployeeReport) EmployeeReportView {
	details := make([]WorkDetailView, 0, len(report.WorkDetails))
	for _, d := range report.WorkDetails {
		details = append(details, WorkDetailView{App: d.App, Duration: d.DurationSeconds})
	}
	return EmployeeReportView{
		Summary:     toSummaryView(report.Summary),
		WorkDetails: details,
	}
}
