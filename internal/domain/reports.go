package domain

import (
	"context"
	"time"
)

// CategorySummary holds total seconds per category over some date range.
type CategorySummary struct {
	Work    int64
	Private int64
	Idle    int64
}

// WorkDetail is one row of the work breakdown, grouped by retained detail text.
type WorkDetail struct {
	App             string
	DurationSeconds int64
}

// EmployeeReport is the productivity report for one user.
type EmployeeReport struct {
	Summary     CategorySummary
	WorkDetails []WorkDetail
}

// TeamMemberSummary pairs one direct report with their category summary.
type TeamMemberSummary struct {
	EmployeeID string
	Name       *string
	Summary    CategorySummary
}

// TeamReport aggregates a manager's direct reports.
type TeamReport struct {
	TeamSummary CategorySummary
	Members     []TeamMemberSummary
}

// DepartmentSummary is one manager's team rolled up for the company view.
type DepartmentSummary struct {
	ManagerID   int64
	ManagerName *string
	Summary     CategorySummary
}

// CompanyReport is the CEO-level rollup.
type CompanyReport struct {
	CompanySummary CategorySummary
	ByDepartment   []DepartmentSummary
}

// ReportRepository captures the aggregate queries behind the dashboards.
// A nil/empty userIDs slice in CategorySummary means the whole company.
type ReportRepository interface {
	CategorySummary(ctx context.Context, userIDs []int64, from, to time.Time) (CategorySummary, error)
	WorkDetails(ctx context.Context, userID int64, from, to time.Time) ([]WorkDetail, error)
	ListDirectReports(ctx context.Context, managerID int64) ([]User, error)
	ListManagers(ctx context.Context) ([]User, error)
	UserByEmployeeID(ctx context.Context, employeeID string) (*User, error)
}

// ReportService builds role-scoped productivity reports.
type ReportService struct {
	repo ReportRepository
}

// NewReportService constructs a ReportService.
func NewReportService(repo ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// EmployeeReport builds the report for a single user. The end date is
// inclusive: callers pass calendar dates and the query range covers
// [from, to+24h).
func (s *ReportService) EmployeeReport(ctx context.Context, userID int64, from, to time.Time) (*EmployeeReport, error) {
	from, to = normalizeRange(from, to)

	summary, err := s.repo.CategorySummary(ctx, []int64{userID}, from, to)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.WorkDetails(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &EmployeeReport{Summary: summary, WorkDetails: details}, nil
}

// TeamReport aggregates the manager's direct reports plus a per-member breakdown.
func (s *ReportService) TeamReport(ctx context.Context, managerID int64, from, to time.Time) (*TeamReport, error) {
	from, to = normalizeRange(from, to)

	members, err := s.repo.ListDirectReports(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return &TeamReport{Members: []TeamMemberSummary{}}, nil
	}

	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	teamSummary, err := s.repo.CategorySummary(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}

	memberSummaries := make([]TeamMemberSummary, 0, len(members))
	for _, member := range members {
		summary, err := s.repo.CategorySummary(ctx, []int64{member.ID}, from, to)
		if err != nil {
			return nil, err
		}
		memberSummaries = append(memberSummaries, TeamMemberSummary{
			EmployeeID: member.EmployeeID,
			Name:       member.FullName,
			Summary:    summary,
		})
	}

	return &TeamReport{TeamSummary: teamSummary, Members: memberSummaries}, nil
}

// TeamMemberReport drills into one direct report. Managers may only read
// reports for employees they directly manage.
func (s *ReportService) TeamMemberReport(ctx context.Context, managerID int64, employeeID string, from, to time.Time) (*EmployeeReport, error) {
	member, err := s.repo.UserByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.ManagerID == nil || *member.ManagerID != managerID {
		return nil, ErrNotDirectReport
	}
	return s.EmployeeReport(ctx, member.ID, from, to)
}

// CompanyReport rolls up the whole company plus a per-department breakdown.
// Departments with no members are omitted.
func (s *ReportService) CompanyReport(ctx context.Context, from, to time.Time) (*CompanyReport, error) {
	from, to = normalizeRange(from, to)

	companySummary, err := s.repo.CategorySummary(ctx, nil, from, to)
	if err != nil {
		return nil, err
	}

	managers, err := s.repo.ListManagers(ctx)
	if err != nil {
		return nil, err
	}

	departments := make([]DepartmentSummary, 0, len(managers))
	for _, manager := range managers {
		members, err := s.repo.ListDirectReports(ctx, manager.ID)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}
		ids := make([]int64, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		summary, err := s.repo.CategorySummary(ctx, ids, from, to)
		if err != nil {
			return nil, err
		}
		departments = append(departments, DepartmentSummary{
			ManagerID:   manager.ID,
			ManagerName: manager.FullName,
			Summary:     summary,
		})
	}

	return &CompanyReport{CompanySummary: companySummary, ByDepartment: departments}, nil
}

// normalizeRange truncates both bounds to UTC midnight and makes the end
// date inclusive by pushing it one day forward.
func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	from = truncateDay(from)
	to = truncateDay(to).Add(24 * time.Hour)
	return from, to
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
