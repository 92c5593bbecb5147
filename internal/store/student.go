package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const studentColumns = `id, name, roll_number, father_name, class_name, phone, teacher_id, admission_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(sc rowScanner) (model.Student, error) {
	var st model.Student
	var teacherID sql.NullString
	err := sc.Scan(&st.ID, &st.Name, &st.RollNumber, &st.FatherName, &st.ClassName, &st.Phone,
		&teacherID, &st.AdmissionDate, &st.CreatedAt)
	if teacherID.Valid {
		st.TeacherID = &teacherID.String
	}
	return st, err
}

func nullableString(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

// CreateStudent registers a student. A missing ID is generated and a zero
// admission date defaults to today. Duplicate roll numbers yield ErrConflict.
func (s *Store) CreateStudent(st model.Student) (model.Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if st.AdmissionDate.IsZero() {
		st.AdmissionDate = now.Truncate(24 * time.Hour)
	}
	st.CreatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO students (`+studentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.RollNumber, st.FatherName, st.ClassName, st.Phone,
		nullableString(st.TeacherID), st.AdmissionDate.UTC(), st.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Student{}, fmt.Errorf("roll number %q: %w", st.RollNumber, ErrConflict)
		}
		return model.Student{}, err
	}
	slog.Info("registered student", "id", st.ID, "roll_number", st.RollNumber)
	return st, nil
}

// GetStudent returns a student by ID, or nil if there is none.
func (s *Store) GetStudent(id string) (*model.Student, error) {
	st, err := scanStudent(s.db.QueryRow(`SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStudents returns students ordered by roll number. A non-empty search
// matches name or roll number as a substring.
func (s *Store) ListStudents(search string) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	var args []any
	if search != "" {
		query += ` WHERE name LIKE ? OR roll_number LIKE ?`
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY roll_number`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	students := []model.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// UpdateStudent replaces the editable fields of a student.
func (s *Store) UpdateStudent(st model.Student) error {
	res, err := s.db.Exec(
		`UPDATE students SET name = ?, roll_number = ?, father_name = ?, class_name = ?, phone = ?,
		 teacher_id = ?, admission_date = ? WHERE id = ?`,
		st.Name, st.RollNumber, st.FatherName, st.ClassName, st.Phone,
		nullableString(st.TeacherID), st.AdmissionDate.UTC(), st.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("roll number %q: %w", st.RollNumber, ErrConflict)
		}
		return err
	}
	return affectedOrNotFound(res)
}

// DeleteStudent removes a student together with all of their daily reports.
func (s *Store) DeleteStudent(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_reports WHERE student_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("deleted student", "id", id)
	return nil
}

// StudentCount returns the number of registered students.
func (s *Store) StudentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}
