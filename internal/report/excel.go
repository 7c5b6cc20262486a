package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Afrawles/onboardtracker/internal/onboarding"
)

const (
	dashboardSheet  = "Dashboard"
	onboardingSheet = "Onboarding"
)

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes a workbook with a milestone dashboard and one row per
// person, and returns the file path.
func (e *ExcelExporter) Export(records []onboarding.Record) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("onboarding_%s.xlsx", timestamp))

	f := excelize.NewFile()
	defer f.Close()

	if err := e.createDashboardSheet(f, records); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	if err := e.createOnboardingSheet(f, records); err != nil {
		return "", fmt.Errorf("failed to create onboarding sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if idx, err := f.GetSheetIndex(dashboardSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders(),
	})
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, records []onboarding.Record) error {
	if _, err := f.NewSheet(dashboardSheet); err != nil {
		return err
	}

	hStyle, err := headerStyle(f)
	if err != nil {
		return err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true},
		Border: borders(),
	})
	if err != nil {
		return err
	}

	stats := onboarding.Statistics(records)
	byMilestone, _ := stats["by_milestone"].(map[string]int)

	f.SetCellValue(dashboardSheet, "A1", "Generated:")
	f.SetCellValue(dashboardSheet, "B1", time.Now().Format("02-01-06 15:04"))

	row := 3
	for col, h := range []string{"Milestone", "Completed", "Pending"} {
		cell := cellName(col+1, row)
		f.SetCellValue(dashboardSheet, cell, h)
		f.SetCellStyle(dashboardSheet, cell, cell, hStyle)
	}
	row++

	for _, key := range milestoneKeys() {
		done := byMilestone[key]
		f.SetCellValue(dashboardSheet, cellName(1, row), MilestoneLabel(key))
		f.SetCellValue(dashboardSheet, cellName(2, row), done)
		f.SetCellValue(dashboardSheet, cellName(3, row), len(records)-done)
		row++
	}

	totals := []struct {
		label string
		value any
	}{
		{"People", stats["total"]},
		{"Fully onboarded", stats["completed"]},
		{"Remote", stats["remote"]},
	}
	row++
	for _, t := range totals {
		f.SetCellValue(dashboardSheet, cellName(1, row), t.label)
		f.SetCellValue(dashboardSheet, cellName(2, row), t.value)
		f.SetCellStyle(dashboardSheet, cellName(1, row), cellName(2, row), totalStyle)
		row++
	}

	f.SetColWidth(dashboardSheet, "A", "A", 22)
	f.SetColWidth(dashboardSheet, "B", "C", 14)

	return nil
}

func (e *ExcelExporter) createOnboardingSheet(f *excelize.File, records []onboarding.Record) error {
	if _, err := f.NewSheet(onboardingSheet); err != nil {
		return err
	}

	hStyle, err := headerStyle(f)
	if err != nil {
		return err
	}
	doneStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	headers := append([]string(nil), recordHeader...)
	for _, key := range milestoneKeys() {
		headers = append(headers, MilestoneLabel(key), MilestoneLabel(key)+" At")
	}

	for col, header := range headers {
		cell := cellName(col+1, 1)
		f.SetCellValue(onboardingSheet, cell, header)
		f.SetCellStyle(onboardingSheet, cell, cell, hStyle)
	}

	for i, r := range records {
		row := i + 2
		for col, value := range recordRow(i+1, r) {
			cell := cellName(col+1, row)
			f.SetCellValue(onboardingSheet, cell, value)
			if col >= len(recordHeader) && value == "Yes" {
				f.SetCellStyle(onboardingSheet, cell, cell, doneStyle)
			}
		}
	}

	f.SetColWidth(onboardingSheet, "A", "A", 5)
	f.SetColWidth(onboardingSheet, "B", "B", 25)
	f.SetColWidth(onboardingSheet, "C", columnLetter(len(headers)), 18)

	f.SetPanes(onboardingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
