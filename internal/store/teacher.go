package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const teacherColumns = `id, user_id, name, email, phone, class_name, created_at`

func scanTeacher(sc rowScanner) (model.Teacher, error) {
	var t model.Teacher
	err := sc.Scan(&t.ID, &t.UserID, &t.Name, &t.Email, &t.Phone, &t.ClassName, &t.CreatedAt)
	return t, err
}

// CreateTeacher stores a teacher profile together with its login in one
// transaction. The login role is forced to teacher.
func (s *Store) CreateTeacher(t model.Teacher, login model.User) (model.Teacher, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Teacher{}, err
	}
	defer tx.Rollback()

	login.Role = model.UserRoleTeacher
	login.Active = true
	if login.DisplayName == "" {
		login.DisplayName = t.Name
	}
	userID, err := insertUser(tx, login)
	if err != nil {
		return model.Teacher{}, err
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.UserID = userID
	t.CreatedAt = time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO teachers (`+teacherColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Email, t.Phone, t.ClassName, t.CreatedAt,
	)
	if err != nil {
		return model.Teacher{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Teacher{}, err
	}
	slog.Info("registered teacher", "id", t.ID, "username", login.Username)
	return t, nil
}

// GetTeacher returns a teacher by ID, or nil.
func (s *Store) GetTeacher(id string) (*model.Teacher, error) {
	t, err := scanTeacher(s.db.QueryRow(`SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTeachers returns all teachers by name.
func (s *Store) ListTeachers() ([]model.Teacher, error) {
	rows, err := s.db.Query(`SELECT ` + teacherColumns + ` FROM teachers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teachers := []model.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// DeleteTeacher removes the teacher's login; the profile and sessions go with
// it through ON DELETE CASCADE. Students assigned to the teacher are unassigned.
func (s *Store) DeleteTeacher(id string) error {
	t, err := s.GetTeacher(id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE students SET teacher_id = NULL WHERE teacher_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, t.UserID); err != nil {
		return err
	}
	return tx.Commit()
}
