package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestStudent(t *testing.T, s *Store, name, roll string) model.Student {
	t.Helper()
	st, err := s.CreateStudent(model.Student{
		Name:       name,
		RollNumber: roll,
		FatherName: "father of " + name,
		ClassName:  "Hifz A",
	})
	if err != nil {
		t.Fatalf("insertTestStudent: %v", err)
	}
	return st
}

func insertTestReport(t *testing.T, s *Store, studentID, id string, date time.Time, sabaq string, cond model.Condition) {
	t.Helper()
	err := s.InsertReport(context.Background(), model.DailyReport{
		ID:         id,
		StudentID:  studentID,
		Date:       date,
		Sabaq:      sabaq,
		Sabqi:      "sabqi",
		Manzil:     "manzil",
		Condition:  cond,
		Attendance: model.AttendancePresent,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("insertTestReport: %v", err)
	}
}

func TestStudentCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 students, got %d", count)
	}

	st := insertTestStudent(t, s, "Ahmad", "R-001")
	if st.ID == "" {
		t.Fatal("expected generated ID")
	}
	if st.AdmissionDate.IsZero() {
		t.Error("expected default admission date")
	}

	got, err := s.GetStudent(st.ID)
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if got == nil || got.Name != "Ahmad" || got.RollNumber != "R-001" {
		t.Fatalf("unexpected student %+v", got)
	}
	if got.TeacherID != nil {
		t.Errorf("expected nil teacher, got %v", *got.TeacherID)
	}

	missing, err := s.GetStudent("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("GetStudent missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown student")
	}

	// Duplicate roll number.
	_, err = s.CreateStudent(model.Student{Name: "Other", RollNumber: "R-001"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Update.
	got.Name = "Ahmad Ali"
	got.ClassName = "Hifz B"
	if err := s.UpdateStudent(*got); err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	got, _ = s.GetStudent(st.ID)
	if got.Name != "Ahmad Ali" || got.ClassName != "Hifz B" {
		t.Errorf("update not applied: %+v", got)
	}
	if err := s.UpdateStudent(model.Student{ID: "nope", Name: "x", RollNumber: "R-9"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListStudentsSearch(t *testing.T) {
	s := newTestStore(t)
	insertTestStudent(t, s, "Bilal", "R-002")
	insertTestStudent(t, s, "Ahmad", "R-001")
	insertTestStudent(t, s, "Hamza", "R-010")

	tests := []struct {
		name      string
		search    string
		wantCount int
		wantFirst string
	}{
		{"no filter", "", 3, "R-001"},
		{"by name", "Bil", 1, "R-002"},
		{"by roll", "R-01", 1, "R-010"},
		{"no match", "Zaid", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListStudents(tt.search)
			if err != nil {
				t.Fatalf("ListStudents: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d students, got %d", tt.wantCount, len(got))
			}
			if tt.wantCount > 0 && got[0].RollNumber != tt.wantFirst {
				t.Errorf("expected first roll %q, got %q", tt.wantFirst, got[0].RollNumber)
			}
		})
	}
}

func TestDeleteStudentRemovesReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := insertTestStudent(t, s, "Ahmad", "R-001")
	insertTestReport(t, s, st.ID, "r1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "a", model.ConditionGood)

	if err := s.DeleteStudent(st.ID); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	n, err := s.CountReports(ctx, st.ID)
	if err != nil {
		t.Fatalf("CountReports: %v", err)
	}
	if n != 0 {
		t.Errorf("expected reports to be deleted, got %d", n)
	}
	if err := s.DeleteStudent(st.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTeacherLifecycle(t *testing.T) {
	s := newTestStore(t)

	tc, err := s.CreateTeacher(
		model.Teacher{Name: "Ustadh Yusuf", Email: "yusuf@example.org", ClassName: "Hifz A"},
		model.User{Username: "yusuf", PasswordHash: "hash"},
	)
	if err != nil {
		t.Fatalf("CreateTeacher: %v", err)
	}

	u, err := s.GetUserByID(tc.UserID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u == nil || u.Role != model.UserRoleTeacher || !u.Active || u.DisplayName != "Ustadh Yusuf" {
		t.Fatalf("unexpected login %+v", u)
	}

	// Same username again fails and leaves no half-written teacher.
	_, err = s.CreateTeacher(model.Teacher{Name: "Someone"}, model.User{Username: "yusuf", PasswordHash: "h"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	list, err := s.ListTeachers()
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 teacher, got %d", len(list))
	}

	teacherID := tc.ID
	st, err := s.CreateStudent(model.Student{Name: "Ahmad", RollNumber: "R-1", TeacherID: &teacherID})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	if err := s.DeleteTeacher(tc.ID); err != nil {
		t.Fatalf("DeleteTeacher: %v", err)
	}
	if got, _ := s.GetTeacher(tc.ID); got != nil {
		t.Error("expected teacher to be gone")
	}
	if u, _ := s.GetUserByID(tc.UserID); u != nil {
		t.Error("expected login to be gone")
	}
	got, _ := s.GetStudent(st.ID)
	if got.TeacherID != nil {
		t.Errorf("expected student to be unassigned, got %v", *got.TeacherID)
	}
	if err := s.DeleteTeacher(tc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersAndSessions(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "h", Role: model.UserRoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "h"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	byName, err := s.GetUserByUsername("admin")
	if err != nil || byName == nil || byName.ID != id {
		t.Fatalf("GetUserByUsername: %+v, %v", byName, err)
	}
	if u, _ := s.GetUserByUsername("ghost"); u != nil {
		t.Error("expected nil for unknown username")
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d", len(token))
	}
	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil || sess.UserID != id {
		t.Fatalf("GetAuthSession: %+v, %v", sess, err)
	}

	// Deactivation drops sessions.
	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	if sess, _ := s.GetAuthSession(token); sess != nil {
		t.Error("expected session to be dropped on deactivation")
	}
	u, _ := s.GetUserByID(id)
	if u.Active {
		t.Error("expected user to be inactive")
	}
	if err := s.ToggleUserActive(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateUser(model.User{Username: "t", PasswordHash: "h", Role: model.UserRoleTeacher, Active: true})
	if _, err := s.CreateAuthSession(id); err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	n, err := s.CleanupExpiredSessions(time.Now())
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing to expire yet, removed %d", n)
	}

	n, err = s.CleanupExpiredSessions(time.Now().Add(authSessionTTL + time.Hour))
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session removed, got %d", n)
	}
}

func TestInsertReportDuplicate(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	insertTestReport(t, s, "student-a", "r1", date, "a", model.ConditionGood)

	err := s.InsertReport(context.Background(), model.DailyReport{
		ID: "r2", StudentID: "student-a", Date: date, Condition: model.ConditionGood,
		Attendance: model.AttendancePresent, CreatedAt: time.Now(),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Same date for another student, and another instant for the same student, are fine.
	insertTestReport(t, s, "student-b", "r3", date, "a", model.ConditionGood)
	insertTestReport(t, s, "student-a", "r4", date.Add(time.Hour), "a", model.ConditionGood)
}

func TestListReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }
	for i, d := range []int{5, 1, 20, 29} {
		insertTestReport(t, s, "s1", "r"+string(rune('a'+i)), day(d), "x", model.ConditionGood)
	}
	insertTestReport(t, s, "s2", "other", day(3), "x", model.ConditionGood)

	from, to := day(2), day(20)
	tests := []struct {
		name      string
		filter    model.ReportFilter
		wantDates []int
	}{
		{"all descending", model.ReportFilter{StudentID: "s1"}, []int{29, 20, 5, 1}},
		{"ascending", model.ReportFilter{StudentID: "s1", Ascending: true}, []int{1, 5, 20, 29}},
		{"inclusive range", model.ReportFilter{StudentID: "s1", From: &from, To: &to}, []int{20, 5}},
		{"page", model.ReportFilter{StudentID: "s1", Ascending: true, Limit: 2, Offset: 2}, []int{20, 29}},
		{"unknown student", model.ReportFilter{StudentID: "nobody"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListReports(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListReports: %v", err)
			}
			if len(got) != len(tt.wantDates) {
				t.Fatalf("expected %d reports, got %d", len(tt.wantDates), len(got))
			}
			for i, d := range tt.wantDates {
				if got[i].Date.Day() != d {
					t.Errorf("report %d: expected day %d, got %d", i, d, got[i].Date.Day())
				}
			}
		})
	}

	n, err := s.CountReports(ctx, "s1")
	if err != nil {
		t.Fatalf("CountReports: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 reports, got %d", n)
	}
}

func TestReportDateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2024, 3, 7, 13, 45, 12, 345_000_000, time.FixedZone("PKT", 5*3600))
	insertTestReport(t, s, "s1", "r1", date, "x", model.ConditionMedium)

	got, err := s.ListReports(context.Background(), model.ReportFilter{StudentID: "s1"})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if !got[0].Date.Equal(date) {
		t.Errorf("expected %v, got %v", date, got[0].Date)
	}
	if got[0].Condition != model.ConditionMedium {
		t.Errorf("expected Medium, got %q", got[0].Condition)
	}
}

func TestExportAllStudents(t *testing.T) {
	s := newTestStore(t)
	st := insertTestStudent(t, s, "Ahmad", "R-001")
	insertTestStudent(t, s, "Bilal", "R-002")
	insertTestReport(t, s, st.ID, "r1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "a,b,c", model.ConditionGood)
	insertTestReport(t, s, st.ID, "r2", time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), "x,y", model.ConditionNeedFocus)

	results, err := s.ExportAllStudents(context.Background())
	if err != nil {
		t.Fatalf("ExportAllStudents: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	r := results[0]
	if r.Student.ID != st.ID {
		t.Fatalf("expected first result for %s, got %s", st.ID, r.Student.ID)
	}
	if r.TotalLinesCompleted != 5 {
		t.Errorf("expected 5 lines, got %d", r.TotalLinesCompleted)
	}
	if r.PoorReports != 1 {
		t.Errorf("expected 1 poor report, got %d", r.PoorReports)
	}
	if len(r.Reports) != 2 || r.Reports[0].ID != "r1" {
		t.Errorf("expected reports oldest first, got %+v", r.Reports)
	}
	if len(results[1].Reports) != 0 {
		t.Errorf("expected no reports for second student")
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetImportedFileHash("/some/roster.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/roster.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("/some/roster.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/roster.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}
