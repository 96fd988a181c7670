package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetops/payroll-sync/internal/model"
)

type ExcelRenderer interface {
	Render(report model.SubmissionReport) ([]byte, error)
}

type PDFRenderer interface {
	Render(report model.SubmissionReport) ([]byte, error)
}

type ReportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type ReportResult struct {
	FileName string
	Content  []byte
}

// ReportService renders submission reports over a date range.
type ReportService struct {
	store EntryStore
	excel ExcelRenderer
	pdf   PDFRenderer
	now   func() time.Time
}

func NewReportService(store EntryStore, excel ExcelRenderer, pdf PDFRenderer) *ReportService {
	return &ReportService{store: store, excel: excel, pdf: pdf, now: time.Now}
}

func (s *ReportService) Excel(ctx context.Context, input ReportInput) (*ReportResult, error) {
	report, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Render(*report)
	if err != nil {
		return nil, err
	}
	return &ReportResult{FileName: s.fileName(*report, "xlsx"), Content: content}, nil
}

func (s *ReportService) PDF(ctx context.Context, input ReportInput) (*ReportResult, error) {
	report, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Render(*report)
	if err != nil {
		return nil, err
	}
	return &ReportResult{FileName: s.fileName(*report, "pdf"), Content: content}, nil
}

func (s *ReportService) build(ctx context.Context, input ReportInput) (*model.SubmissionReport, error) {
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}
	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	groups, err := s.store.ListForReport(ctx, periodStart, endExclusive)
	if err != nil {
		return nil, err
	}

	report := &model.SubmissionReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GeneratedAt: s.now().UTC(),
		Groups:      groups,
	}
	for _, group := range groups {
		report.TotalEntries += group.EntryCount
		report.TotalHours += group.TotalHours
	}
	return report, nil
}

func (s *ReportService) fileName(report model.SubmissionReport, ext string) string {
	return fmt.Sprintf("timesheets-%s-%s.%s",
		report.PeriodStart.Format("20060102"),
		report.PeriodEnd.Format("20060102"),
		ext,
	)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
