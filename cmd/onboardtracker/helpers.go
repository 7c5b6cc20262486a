package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Afrawles/onboardtracker/internal/config"
	"github.com/Afrawles/onboardtracker/internal/diagnostics"
)

// parseCommaList splits a comma-separated string, trims whitespace and
// drops empty entries.
func parseCommaList(input string) []string {
	if input == "" {
		return []string{}
	}

	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}

func printReport(w io.Writer, r *diagnostics.Report, cfg *config.Config) {
	if r == nil {
		return
	}

	if r.User != nil {
		fmt.Fprintf(w, "\nAuthenticated as %s <%s> (%s)\n", r.User.Name, r.User.Email, r.User.GID)
	}
	if r.Project != nil {
		fmt.Fprintf(w, "Project: %s (%s)\n", r.Project.Name, r.Project.GID)
	}

	if len(r.CustomFields) > 0 {
		fmt.Fprintf(w, "\nCustom fields:\n")
		for _, f := range r.CustomFields {
			fmt.Fprintf(w, "  %-30s %-20s %s\n", f.Name, f.GID, f.ResourceSubtype)
		}
	}

	if len(r.Sections) > 0 {
		fmt.Fprintf(w, "\nSections:\n")
		for _, s := range r.Sections {
			marker := " "
			if s.Configured {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %-30s %s\n", marker, s.Name, s.GID)
		}
	}

	if r.SampleTasks != nil {
		fmt.Fprintf(w, "\nSample tasks in section %s:\n", cfg.Asana.SectionGID)
		if len(r.SampleTasks) == 0 {
			fmt.Fprintf(w, "  (none)\n")
		}
		for _, t := range r.SampleTasks {
			fmt.Fprintf(w, "  %-40s %s\n", t.Name, t.GID)
		}
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
}
