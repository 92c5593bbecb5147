package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/validate"
)

// SubmitInput is the body of a report submission. Pointer fields separate
// "missing" from a zero value.
type SubmitInput struct {
	Date           string  `json:"date,omitempty"`
	Sabaq          *string `json:"sabaq" validate:"required"`
	SabaqMistakes  *int    `json:"sabaqMistakes" validate:"required,min=0"`
	Sabqi          *string `json:"sabqi" validate:"required"`
	SabqiMistakes  *int    `json:"sabqiMistakes" validate:"required,min=0"`
	Manzil         *string `json:"manzil" validate:"required"`
	ManzilMistakes *int    `json:"manzilMistakes" validate:"required,min=0"`
	Attendance     string  `json:"attendance" validate:"required,oneof=Present Absent Leave"`
}

func validateInput(in SubmitInput) error {
	if fields := validate.Struct(in); fields != nil {
		return &ValidationError{Message: "invalid report", Fields: fields}
	}
	return nil
}

// CanonicalStudentID parses a UUID in any accepted spelling (upper case,
// braces, urn:uuid: prefix) and returns its lower-case hyphenated form.
func CanonicalStudentID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", invalid("invalid student id %q", id)
	}
	return u.String(), nil
}

// requireText reports recitation fields left blank after sanitising.
func requireText(r model.DailyReport) error {
	fields := map[string]string{}
	for name, v := range map[string]string{"sabaq": r.Sabaq, "sabqi": r.Sabqi, "manzil": r.Manzil} {
		if v == "" {
			fields[name] = name + " must contain text"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid report", Fields: fields}
	}
	return nil
}

const dateOnly = "2006-01-02"

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

// parsePositive parses raw as an integer in [1, max]; empty means def.
func parsePositive(name, raw string, def, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > max {
		return 0, invalid("%s must be an integer between 1 and %d", name, max)
	}
	return n, nil
}

// pageOffset returns the row offset of page p, rejecting pages past the int range.
func pageOffset(p, limit int) (int, error) {
	if p-1 > math.MaxInt/limit {
		return 0, invalid("page %d is out of range", p)
	}
	return (p - 1) * limit, nil
}
