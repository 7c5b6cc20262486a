package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "onboarding.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `asana:
  token: "tok"
  section_gid: "111"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.Asana.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Asana.Timeout)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.Asana.RequestsPerSecond)
	assert.Equal(t, DefaultMaxDepth, cfg.Asana.MaxDepth)
	assert.Equal(t, "Deploy laptop", cfg.Milestones.Laptop)
	assert.Equal(t, []string{"Technology set up"}, cfg.Milestones.ExpandGroups)
	assert.Equal(t, "IN", cfg.Milestones.OnsiteState)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.AllowedOrigin)
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `asana:
  token: "tok"
  project_gid: "900"
  section_gid: "111"
  timeout: 5s
  requests_per_second: 0
  max_depth: 3
custom_fields:
  state: "1"
  position: "2"
  start_date: "3"
  email: "4"
  phone: "5"
  shipping_address: "6"
milestones:
  laptop: "Ship laptop"
server:
  addr: ":9090"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "900", cfg.Asana.ProjectGID)
	assert.Equal(t, 5*time.Second, cfg.Asana.Timeout)
	assert.Equal(t, 0.0, cfg.Asana.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Asana.MaxDepth)
	assert.Equal(t, "3", cfg.CustomFields.StartDate)
	assert.Equal(t, "6", cfg.CustomFields.ShippingAddress)
	assert.Equal(t, "Ship laptop", cfg.Milestones.Laptop)
	assert.Equal(t, "Deploy peripherals", cfg.Milestones.Peripherals)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_EnvOverridesToken(t *testing.T) {
	t.Setenv("ASANA_TOKEN", "from-env")
	p := writeConfig(t, `asana:
  section_gid: "111"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Asana.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no token", "asana:\n  section_gid: \"1\"\n", "asana.token"},
		{"no section", "asana:\n  token: \"t\"\n", "asana.section_gid"},
		{"bad depth", "asana:\n  token: \"t\"\n  section_gid: \"1\"\n  max_depth: 0\n", "max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ASANA_TOKEN", "")
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.Asana.RequestsPerSecond)
	assert.Equal(t, []string{"Technology set up"}, cfg.Milestones.ExpandGroups)
	assert.Error(t, cfg.Validate())
}
