package model

import (
	"context"
	"strings"
	"time"
)

// UserRole represents a login's access level.
type UserRole string

const (
	// UserRoleTeacher can register students and record daily reports.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin can additionally manage teachers and logins.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system login.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Student is a registered pupil. IDs are UUID strings.
type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RollNumber    string    `json:"rollNumber"`
	FatherName    string    `json:"fatherName"`
	ClassName     string    `json:"className"`
	Phone         string    `json:"phone"`
	TeacherID     *string   `json:"teacherId,omitempty"`
	AdmissionDate time.Time `json:"admissionDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Teacher is a staff profile linked to a login.
type Teacher struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ClassName string    `json:"className"`
	CreatedAt time.Time `json:"createdAt"`
}

// Condition is the derived performance label of a single daily report.
type Condition string

const (
	ConditionGood         Condition = "Good"
	ConditionMedium       Condition = "Medium"
	ConditionBelowAverage Condition = "Below Average"
	ConditionNeedFocus    Condition = "Need Focus"
)

// Poor reports whether c counts as poor performance.
func (c Condition) Poor() bool {
	return c == ConditionBelowAverage || c == ConditionNeedFocus
}

// Attendance is the student's presence on the report date.
type Attendance string

const (
	AttendancePresent Attendance = "Present"
	AttendanceAbsent  Attendance = "Absent"
	AttendanceLeave   Attendance = "Leave"
)

// DailyReport is one recitation record per student per date.
type DailyReport struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	Date           time.Time  `json:"date"`
	Sabaq          string     `json:"sabaq"`
	SabaqMistakes  int        `json:"sabaqMistakes"`
	Sabqi          string     `json:"sabqi"`
	SabqiMistakes  int        `json:"sabqiMistakes"`
	Manzil         string     `json:"manzil"`
	ManzilMistakes int        `json:"manzilMistakes"`
	Condition      Condition  `json:"condition"`
	Attendance     Attendance `json:"attendance"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SabaqLines counts the comma-separated segments of the sabaq text.
// An empty text still counts as one segment.
func (r DailyReport) SabaqLines() int {
	return len(strings.Split(r.Sabaq, ","))
}

// ReportFilter selects reports of one student.
// Nil bounds are open; a zero Limit means no limit.
type ReportFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
	Ascending bool
	Limit     int
	Offset    int
}

// Alert is pushed to connected dashboards when a student's week looks poor.
type Alert struct {
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	RollNumber  string    `json:"rollNumber"`
	ReportID    string    `json:"reportId"`
	Condition   Condition `json:"condition"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sentAt"`
}

// StudentImport is used for loading a roster from JSON.
type StudentImport struct {
	Name          string `json:"name"`
	RollNumber    string `json:"rollNumber"`
	FatherName    string `json:"fatherName"`
	ClassName     string `json:"className"`
	Phone         string `json:"phone"`
	AdmissionDate string `json:"admissionDate"` // YYYY-MM-DD, optional
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Lang           string
	SecureCookies  bool     // Set Secure flag on cookies (disable for local dev)
	AllowedOrigins []string // websocket Origin allow-list; empty means same host only
	SummaryEnabled bool
}
