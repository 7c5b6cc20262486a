package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Afrawles/onboardtracker/internal/onboarding"
)

//go:embed "templates"
var templateFS embed.FS

type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

func (e *Exporter) ExportJSON(records []onboarding.Record, filename string) error {
	data, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(e.OutputDir, filename), data, 0644)
}

// MilestoneLabel turns a timeline key such as "microsoft_account" into
// "Microsoft Account".
func MilestoneLabel(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func (e *Exporter) ExportHTML(records []onboarding.Record, stats map[string]any, filename string) error {
	funcMap := template.FuncMap{
		"label": MilestoneLabel,
		"deref": deref,
	}
	tmpl, err := template.New("onboarding.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/onboarding.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	outputPath := filepath.Join(e.OutputDir, filename)
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer f.Close()

	sorted := append([]onboarding.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var keys []string
	if len(sorted) > 0 {
		for _, m := range sorted[0].Milestones() {
			keys = append(keys, m.Key)
		}
	}

	data := map[string]any{
		"Date":       time.Now().Format("2006-01-02 15:04:05"),
		"Records":    sorted,
		"Milestones": keys,
		"Stats":      stats,
	}

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
