package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fleetops/payroll-sync/internal/model"
)

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Render(report model.SubmissionReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	for _, group := range report.Groups {
		sheetName := sheetNameForStatus(group.Status)
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeDetail(file, sheetName, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(file *excelize.File, sheet string, report model.SubmissionReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Timesheet submission")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Generated at")
	set("B4", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	set("A5", "Total entries")
	set("B5", report.TotalEntries)
	set("A6", "Total hours")
	set("B6", fmt.Sprintf("%.2f", report.TotalHours))

	tableRow := 8
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Entries")
	set(fmt.Sprintf("C%d", tableRow), "Hours")

	for i, group := range report.Groups {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(group.Status))
		set(fmt.Sprintf("B%d", row), group.EntryCount)
		set(fmt.Sprintf("C%d", row), fmt.Sprintf("%.2f", group.TotalHours))
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "C", 16)
	return nil
}

func (g *ExcelGenerator) writeDetail(file *excelize.File, sheet string, group model.StatusGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Status")
	set("B1", string(group.Status))
	set("A2", "Entries")
	set("B2", group.EntryCount)
	set("A3", "Hours")
	set("B3", fmt.Sprintf("%.2f", group.TotalHours))

	tableRow := 5
	headers := []string{
		"Date",
		"Email",
		"Category",
		"Hours",
		"Contract ID",
		"Timesheet ID",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range group.Rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), formatDate(row.EntryDate))
		set(fmt.Sprintf("B%d", line), formatString(row.Email))
		set(fmt.Sprintf("C%d", line), row.Category)
		set(fmt.Sprintf("D%d", line), fmt.Sprintf("%.2f", row.Quantity()))
		set(fmt.Sprintf("E%d", line), formatString(row.ContractID))
		set(fmt.Sprintf("F%d", line), formatString(row.DeelTimesheetID))
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 24)
	_ = file.SetColWidth(sheet, "D", "D", 10)
	_ = file.SetColWidth(sheet, "E", "F", 40)
	return nil
}

func sheetNameForStatus(status model.EntryStatus) string {
	return "Status - " + string(status)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
