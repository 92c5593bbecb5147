package model

import "time"

// ReportExport is the top-level JSON structure for report export.
type ReportExport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	NumStudents int             `json:"numStudents"`
	Students    []StudentResult `json:"students"`
}

// StudentResult holds one student's reports for export.
type StudentResult struct {
	Student             Student       `json:"student"`
	TotalLinesCompleted int           `json:"totalLinesCompleted"`
	PoorReports         int           `json:"poorReports"`
	Reports             []DailyReport `json:"reports"`
}
