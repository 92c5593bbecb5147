package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/madrasa-panel/madrasa/internal/model"
)

var (
	reportsTagRegex         = regexp.MustCompile(`(?i)</?\s*reports\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxFieldRunes = 500

// PromptVariant selects the tone of a progress summary.
type PromptVariant string

const (
	// PromptGentle is an encouraging note aimed at parents.
	PromptGentle PromptVariant = "gentle"
	// PromptStandard is the default balanced note.
	PromptStandard PromptVariant = "standard"
	// PromptStrict surfaces problems for the head of the madrasa.
	PromptStrict PromptVariant = "strict"
)

var validVariants = map[PromptVariant]bool{
	PromptGentle:   true,
	PromptStandard: true,
	PromptStrict:   true,
}

var (
	loadOnce         sync.Once
	loadErr          error
	summaryTemplates map[PromptVariant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// ReportLine is one report as shown to the model.
type ReportLine struct {
	Date           string
	Attendance     string
	Sabaq          string
	SabaqMistakes  int
	Sabqi          string
	SabqiMistakes  int
	Manzil         string
	ManzilMistakes int
	Condition      string
}

// SummaryData holds template data for summary prompts.
type SummaryData struct {
	StudentName string
	RollNumber  string
	ClassName   string
	TotalLines  int
	PoorCount   int
	Reports     []ReportLine
}

// Load loads prompt templates from fsys, which must contain
// prompts/summary_<variant>.txt for every variant. Only the first call loads.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		summaryTemplates = make(map[PromptVariant]*template.Template)

		for _, v := range []PromptVariant{PromptGentle, PromptStandard, PromptStrict} {
			file := "prompts/summary_" + string(v) + ".txt"

			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
				return
			}

			tmpl, err := template.New("summary").Parse(string(content))
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
				return
			}
			summaryTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildSummaryPrompt renders the summary prompt for a student's reports in
// the order given.
func BuildSummaryPrompt(variant PromptVariant, student model.Student, reports []model.DailyReport) (string, error) {
	if summaryTemplates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := summaryTemplates[variant]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data := SummaryData{
		StudentName: sanitizeText(student.Name),
		RollNumber:  sanitizeText(student.RollNumber),
		ClassName:   sanitizeText(student.ClassName),
	}
	for _, r := range reports {
		data.TotalLines += r.SabaqLines()
		if r.Condition.Poor() {
			data.PoorCount++
		}
		data.Reports = append(data.Reports, ReportLine{
			Date:           r.Date.Format("2006-01-02"),
			Attendance:     string(r.Attendance),
			Sabaq:          sanitizeText(r.Sabaq),
			SabaqMistakes:  r.SabaqMistakes,
			Sabqi:          sanitizeText(r.Sabqi),
			SabqiMistakes:  r.SabqiMistakes,
			Manzil:         sanitizeText(r.Manzil),
			ManzilMistakes: r.ManzilMistakes,
			Condition:      string(r.Condition),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitizeText keeps teacher-entered text from closing the data block or
// posing as instructions, and flattens it to one line.
func sanitizeText(s string) string {
	s = reportsTagRegex.ReplaceAllString(s, "")
	s = systemInstructionsRegex.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if s == "" {
		return "-"
	}
	if utf8.RuneCountInString(s) > maxFieldRunes {
		runes := []rune(s)
		s = string(runes[:maxFieldRunes]) + " [truncated]"
	}
	return s
}
