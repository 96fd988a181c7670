package model

import "time"

// ReportRow is a single time entry as it appears in a submission report.
type ReportRow struct {
	EntryDate       time.Time
	Email           *string
	Category        string
	Hours           int
	Minutes         int
	ContractID      *string
	DeelTimesheetID *string
}

func (r ReportRow) Quantity() float64 {
	return float64(r.Hours) + float64(r.Minutes)/60
}

// StatusGroup collects the report rows sharing one submission status.
type StatusGroup struct {
	Status     EntryStatus
	EntryCount int64
	TotalHours float64
	Rows       []ReportRow `gorm:"-"`
}

// SubmissionReport is the read-only view rendered to xlsx or pdf.
type SubmissionReport struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	GeneratedAt  time.Time
	TotalEntries int64
	TotalHours   float64
	Groups       []StatusGroup
}
