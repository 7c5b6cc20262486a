package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Afrawles/onboardtracker/internal/onboarding"
)

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

var recordHeader = []string{
	"#",
	"Name",
	"Task GID",
	"Position",
	"State",
	"Remote",
	"Email",
	"Phone",
	"Shipping Address",
	"Start Date",
}

// Export writes one row per record and returns the file path.
func (e *CSVExporter) Export(records []onboarding.Record) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("onboarding_%s.csv", timestamp))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := append([]string(nil), recordHeader...)
	for _, m := range milestoneKeys() {
		header = append(header, MilestoneLabel(m), MilestoneLabel(m)+" At")
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i, r := range records {
		if err := writer.Write(recordRow(i+1, r)); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return filename, nil
}

func recordRow(n int, r onboarding.Record) []string {
	row := []string{
		fmt.Sprintf("%d", n),
		r.Name,
		r.TaskGID,
		deref(r.Position),
		deref(r.State),
		yesNo(r.IsRemote),
		deref(r.Email),
		deref(r.Phone),
		deref(r.ShippingAddress),
		startDate(r),
	}
	for _, m := range r.Milestones() {
		row = append(row, yesNo(m.Completed), formatTimestamp(m.CompletedAt))
	}
	return row
}

func milestoneKeys() []string {
	var keys []string
	for _, m := range (onboarding.Record{}).Milestones() {
		keys = append(keys, m.Key)
	}
	return keys
}

func startDate(r onboarding.Record) string {
	if r.StartDate == nil {
		return ""
	}
	return r.StartDate.Date
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatTimestamp renders Asana timestamps as dd/mm/yy and passes other
// values, such as plain dates, through.
func formatTimestamp(s *string) string {
	if s == nil {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return t.Format("02/01/06")
	}
	return *s
}
