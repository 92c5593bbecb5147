package report

import (
	"context"
	"strconv"
	"math"
	"strings"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 1000
)

// Page is one slice of a student's reports, oldest first.
type Page struct {
	Reports []model.DailyReport `json:"reports"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	Total   int                 `json:"total"`
}

func (s *Service) list(ctx context.Context, f model.ReportFilter) ([]model.DailyReport, error) {
	id, err := CanonicalStudentID(f.StudentID)
	if err != nil {
		return nil, err
	}
	f.StudentID = id
	reports, err := s.repo.ListReports(ctx, f)
	if err != nil {
		return nil, &StorageError{Op: "list reports", Err: err}
	}
	return reports, nil
}

// List returns all of a student's reports, newest first.
func (s *Service) List(ctx context.Context, studentID string) ([]model.DailyReport, error) {
	return s.list(ctx, model.ReportFilter{StudentID: studentID})
}

// ListRange returns reports dated within [start, end], newest first.
// Both bounds are required.
func (s *Service) ListRange(ctx context.Context, studentID, start, end string) ([]model.DailyReport, error) {
	if _, err := CanonicalStudentID(studentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, invalid("startDate and endDate are required")
	}
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.ReportFilter{StudentID: studentID, From: &from, To: &to})
}

// MonthBounds returns the first and last millisecond of a calendar month in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Millisecond)
	return first, last
}

// ListMonth returns reports dated within the given month, newest first.
func (s *Service) ListMonth(ctx context.Context, studentID, month, year string) ([]model.DailyReport, error) {
	if _, err := CanonicalStudentID(studentID); err != nil {
		return nil, err
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return nil, invalid("month must be an integer between 1 and 12")
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 {
		return nil, invalid("year must be a positive integer")
	}
	from, to := MonthBounds(y, time.Month(m))
	return s.list(ctx, model.ReportFilter{StudentID: studentID, From: &from, To: &to})
}

// ListPage returns one page of reports ordered oldest first. Empty page and
// limit default to 1 and 100; limit is capped at 1000.
func (s *Service) ListPage(ctx context.Context, studentID, page, limit string) (Page, error) {
	studentID, err := CanonicalStudentID(studentID)
	if err != nil {
		return Page{}, err
	}
	p, err := parsePositive("page", page, defaultPage, math.MaxInt)
	if err != nil {
		return Page{}, err
	}
	l, err := parsePositive("limit", limit, defaultLimit, maxLimit)
	if err != nil {
		return Page{}, err
	}
	offset, err := pageOffset(p, l)
	if err != nil {
		return Page{}, err
	}

	reports, err := s.list(ctx, model.ReportFilter{
		StudentID: studentID,
		Ascending: true,
		Limit:     l,
		Offset:    offset,
	})
	if err != nil {
		return Page{}, err
	}
	total, err := s.repo.CountReports(ctx, studentID)
	if err != nil {
		return Page{}, &StorageError{Op: "count reports", Err: err}
	}
	return Page{Reports: reports, Page: p, Limit: l, Total: total}, nil
}

// TotalLines sums the comma-separated segments of every sabaq the student recited.
func (s *Service) TotalLines(ctx context.Context, studentID string) (int, error) {
	reports, err := s.List(ctx, studentID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range reports {
		total += r.SabaqLines()
	}
	return total, nil
}
