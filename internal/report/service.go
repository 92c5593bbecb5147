package report

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/store"
)

// weekWindow is how far back the weekly evaluator looks.
const weekWindow = 7 * 24 * time.Hour

// Repository persists and reads daily reports. InsertReport must fail with an
// error wrapping store.ErrConflict when (student, date) already exists.
type Repository interface {
	InsertReport(ctx context.Context, r model.DailyReport) error
	ListReports(ctx context.Context, f model.ReportFilter) ([]model.DailyReport, error)
	CountReports(ctx context.Context, studentID string) (int, error)
}

// StudentLookup resolves a student for alert text. A nil student means not found.
type StudentLookup interface {
	GetStudent(id string) (*model.Student, error)
}

// Notifier fans an alert out to connected listeners without blocking.
type Notifier interface {
	Broadcast(a model.Alert)
}

// Translator renders a localised message.
type Translator interface {
	Translate(msgID string, data map[string]any) string
}

// Service runs the report submission pipeline and the report queries.
type Service struct {
	repo     Repository
	students StudentLookup
	notifier Notifier
	tr       Translator
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTranslator localises alert messages.
func WithTranslator(tr Translator) Option {
	return func(s *Service) { s.tr = tr }
}

// New creates a Service. notifier may be nil, in which case no alerts are sent.
func New(repo Repository, students StudentLookup, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		students: students,
		notifier: notifier,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func newReportID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Submit validates, classifies and stores a daily report, then checks the
// student's week and broadcasts an alert when it looks poor. The returned
// report is the stored one; a failed evaluation or alert never fails the call.
func (s *Service) Submit(ctx context.Context, studentID string, in SubmitInput) (model.DailyReport, error) {
	studentID, err := CanonicalStudentID(studentID)
	if err != nil {
		return model.DailyReport{}, err
	}
	if err := validateInput(in); err != nil {
		return model.DailyReport{}, err
	}

	now := s.now()
	date := now
	if in.Date != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return model.DailyReport{}, err
		}
		date = d
	}

	r := model.DailyReport{
		ID:             newReportID(now),
		StudentID:      studentID,
		Date:           date.UTC(),
		Sabaq:          sanitizeText(*in.Sabaq),
		SabaqMistakes:  *in.SabaqMistakes,
		Sabqi:          sanitizeText(*in.Sabqi),
		SabqiMistakes:  *in.SabqiMistakes,
		Manzil:         sanitizeText(*in.Manzil),
		ManzilMistakes: *in.ManzilMistakes,
		Attendance:     model.Attendance(in.Attendance),
		CreatedAt:      now.UTC(),
	}
	if err := requireText(r); err != nil {
		return model.DailyReport{}, err
	}
	r.Condition = Classify(r.SabaqMistakes, r.SabqiMistakes, r.ManzilMistakes)

	if err := s.repo.InsertReport(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			slog.Info("duplicate report rejected", "student_id", studentID, "date", r.Date)
			return model.DailyReport{}, ErrDuplicateReport
		}
		slog.Error("failed to store report", "student_id", studentID, "error", err)
		return model.DailyReport{}, &StorageError{Op: "insert report", Err: err}
	}
	slog.Info("report saved", "id", r.ID, "student_id", studentID, "condition", r.Condition)

	if s.PoorThisWeek(ctx, studentID) {
		s.alert(r)
	}
	return r, nil
}

// PoorThisWeek reports whether any of the student's reports dated within the
// last seven days is Below Average or Need Focus. Future-dated reports are
// outside the window. Storage errors are logged and read as false.
func (s *Service) PoorThisWeek(ctx context.Context, studentID string) bool {
	if id, err := CanonicalStudentID(studentID); err == nil {
		studentID = id
	}
	now := s.now()
	from := now.Add(-weekWindow)
	reports, err := s.repo.ListReports(ctx, model.ReportFilter{StudentID: studentID, From: &from, To: &now})
	if err != nil {
		slog.Warn("weekly evaluation failed", "student_id", studentID, "error", err)
		return false
	}
	for _, r := range reports {
		if r.Condition.Poor() {
			return true
		}
	}
	return false
}

func (s *Service) alert(r model.DailyReport) {
	if s.notifier == nil {
		return
	}
	st, err := s.students.GetStudent(r.StudentID)
	if err != nil {
		slog.Warn("alert skipped: student lookup failed", "student_id", r.StudentID, "error", err)
		return
	}
	if st == nil {
		slog.Warn("alert skipped: unknown student", "student_id", r.StudentID)
		return
	}

	a := model.Alert{
		StudentID:   st.ID,
		StudentName: st.Name,
		RollNumber:  st.RollNumber,
		ReportID:    r.ID,
		Condition:   r.Condition,
		Message:     s.alertMessage(st, r.Condition),
		SentAt:      s.now().UTC(),
	}
	s.notifier.Broadcast(a)
	slog.Info("poor performance alert sent", "student_id", st.ID, "condition", r.Condition)
}

func (s *Service) alertMessage(st *model.Student, cond model.Condition) string {
	data := map[string]any{
		"Name":       st.Name,
		"RollNumber": st.RollNumber,
		"Condition":  string(cond),
	}
	if s.tr != nil {
		return s.tr.Translate("PoorPerformanceAlert", data)
	}
	return fmt.Sprintf("%s (roll %s) needs attention: latest report is %s and this week includes a poor report.",
		st.Name, st.RollNumber, cond)
}
