package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const reportColumns = `id, student_id, report_date, sabaq, sabaq_mistakes, sabqi, sabqi_mistakes,
	manzil, manzil_mistakes, condition, attendance, created_at`

// Report dates are stored as UTC unix milliseconds so that equality and range
// comparisons are exact.
func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func scanReport(sc rowScanner) (model.DailyReport, error) {
	var r model.DailyReport
	var dateMs int64
	err := sc.Scan(&r.ID, &r.StudentID, &dateMs, &r.Sabaq, &r.SabaqMistakes, &r.Sabqi, &r.SabqiMistakes,
		&r.Manzil, &r.ManzilMistakes, &r.Condition, &r.Attendance, &r.CreatedAt)
	r.Date = fromMillis(dateMs)
	return r, err
}

// InsertReport stores a daily report. The (student_id, report_date) unique key
// is the duplicate guard: a second report for the same instant yields ErrConflict
// no matter how many writers race.
func (s *Store) InsertReport(ctx context.Context, r model.DailyReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StudentID, toMillis(r.Date), r.Sabaq, r.SabaqMistakes, r.Sabqi, r.SabqiMistakes,
		r.Manzil, r.ManzilMistakes, r.Condition, r.Attendance, r.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("report for %s on %s: %w", r.StudentID, r.Date.Format(time.RFC3339), ErrConflict)
		}
		return err
	}
	return nil
}

// ListReports returns a student's reports matching f, ordered by date.
func (s *Store) ListReports(ctx context.Context, f model.ReportFilter) ([]model.DailyReport, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + reportColumns + ` FROM daily_reports WHERE student_id = ?`)
	args := []any{f.StudentID}
	if f.From != nil {
		sb.WriteString(` AND report_date >= ?`)
		args = append(args, toMillis(*f.From))
	}
	if f.To != nil {
		sb.WriteString(` AND report_date <= ?`)
		args = append(args, toMillis(*f.To))
	}
	if f.Ascending {
		sb.WriteString(` ORDER BY report_date ASC`)
	} else {
		sb.WriteString(` ORDER BY report_date DESC`)
	}
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reports := []model.DailyReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// CountReports returns how many reports a student has.
func (s *Store) CountReports(ctx context.Context, studentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_reports WHERE student_id = ?`, studentID,
	).Scan(&count)
	return count, err
}
