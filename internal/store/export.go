package store

import (
	"context"
	"fmt"

	"github.com/madrasa-panel/madrasa/internal/model"
)

// ExportAllStudents builds export-ready results: every student with their
// reports (oldest first) and derived totals.
func (s *Store) ExportAllStudents(ctx context.Context) ([]model.StudentResult, error) {
	students, err := s.ListStudents("")
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	results := make([]model.StudentResult, 0, len(students))
	for _, st := range students {
		reports, err := s.ListReports(ctx, model.ReportFilter{StudentID: st.ID, Ascending: true})
		if err != nil {
			return nil, fmt.Errorf("list reports for %s: %w", st.ID, err)
		}

		res := model.StudentResult{Student: st, Reports: reports}
		for _, r := range reports {
			res.TotalLinesCompleted += r.SabaqLines()
			if r.Condition.Poor() {
				res.PoorReports++
			}
		}
		results = append(results, res)
	}
	return results, nil
}
