package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/config"
	"github.com/Afrawles/onboardtracker/internal/diagnostics"
)

func TestParseCommaList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"json", []string{"json"}},
		{" json , xlsx,,html ", []string{"json", "xlsx", "html"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCommaList(tt.in), tt.in)
	}
}

func TestPrintReport(t *testing.T) {
	cfg := config.Defaults()
	cfg.Asana.SectionGID = "S1"

	report := &diagnostics.Report{
		User:    &asana.User{GID: "u1", Name: "Ops Bot", Email: "ops@example.com"},
		Project: &asana.Project{GID: "P1", Name: "People Ops"},
		CustomFields: []asana.CustomField{
			{GID: "f1", Name: "State", ResourceSubtype: "text"},
		},
		Sections: []diagnostics.SectionInfo{
			{Section: asana.Section{GID: "S1", Name: "Onboarding"}, Configured: true},
		},
		SampleTasks: []asana.Task{},
		Warnings:    []string{"something odd"},
	}

	var buf bytes.Buffer
	printReport(&buf, report, cfg)
	out := buf.String()

	assert.Contains(t, out, "Ops Bot <ops@example.com>")
	assert.Contains(t, out, "People Ops (P1)")
	assert.Contains(t, out, "f1")
	assert.Contains(t, out, "* Onboarding")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "warning: something odd")
}

func TestConfigError(t *testing.T) {
	err := configError(config.ErrNotFound)
	assert.ErrorIs(t, err, config.ErrNotFound)
	assert.Contains(t, err.Error(), "onboarding.example.yaml")
}
