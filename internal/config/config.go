package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrNotFound is returned by Load when no configuration file exists.
var ErrNotFound = errors.New("configuration file not found")

const (
	DefaultBaseURL           = "https://app.asana.com/api/1.0"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultMaxDepth          = 5
	DefaultAddr              = ":8080"
	DefaultConfigName        = "onboarding"
)

type Config struct {
	Asana        AsanaConfig        `mapstructure:"asana"`
	CustomFields CustomFieldsConfig `mapstructure:"custom_fields"`
	Milestones   MilestonesConfig   `mapstructure:"milestones"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Output       OutputConfig       `mapstructure:"output"`
}

type AsanaConfig struct {
	Token             string        `mapstructure:"token"`
	BaseURL           string        `mapstructure:"base_url"`
	ProjectGID        string        `mapstructure:"project_gid"`
	SectionGID        string        `mapstructure:"section_gid"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxDepth          int           `mapstructure:"max_depth"`
}

// CustomFieldsConfig maps each logical field to the Asana custom field GID.
type CustomFieldsConfig struct {
	State           string `mapstructure:"state"`
	Position        string `mapstructure:"position"`
	StartDate       string `mapstructure:"start_date"`
	Email           string `mapstructure:"email"`
	Phone           string `mapstructure:"phone"`
	ShippingAddress string `mapstructure:"shipping_address"`
}

type MilestonesConfig struct {
	MicrosoftAccount string   `mapstructure:"microsoft_account"`
	SoftwareAccounts string   `mapstructure:"software_accounts"`
	Laptop           string   `mapstructure:"laptop"`
	Peripherals      string   `mapstructure:"peripherals"`
	ExpandGroups     []string `mapstructure:"expand_groups"`
	OnsiteState      string   `mapstructure:"onsite_state"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OutputConfig struct {
	Directory string   `mapstructure:"directory"`
	Formats   []string `mapstructure:"formats"` // json, csv, xlsx, html
}

// Load reads the YAML configuration at path. With an empty path the file
// onboarding.yaml is searched for in the working directory and ./configs.
// Environment variables override file values, e.g. ASANA_TOKEN for asana.token.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a configuration holding only default values.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) Validate() error {
	if c.Asana.Token == "" {
		return fmt.Errorf("asana.token is required (or set ASANA_TOKEN)")
	}
	if c.Asana.SectionGID == "" {
		return fmt.Errorf("asana.section_gid is required")
	}
	if c.Asana.MaxDepth < 1 {
		return fmt.Errorf("asana.max_depth must be at least 1, got %d", c.Asana.MaxDepth)
	}
	if c.Asana.RequestsPerSecond < 0 {
		return fmt.Errorf("asana.requests_per_second cannot be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("asana.base_url", DefaultBaseURL)
	v.SetDefault("asana.timeout", DefaultTimeout)
	v.SetDefault("asana.requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("asana.max_depth", DefaultMaxDepth)

	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("asana.token", "")
	v.SetDefault("asana.project_gid", "")
	v.SetDefault("asana.section_gid", "")

	v.SetDefault("milestones.microsoft_account", "Create Microsoft user account")
	v.SetDefault("milestones.software_accounts", "Add user to role-based apps")
	v.SetDefault("milestones.laptop", "Deploy laptop")
	v.SetDefault("milestones.peripherals", "Deploy peripherals")
	v.SetDefault("milestones.expand_groups", []string{"Technology set up"})
	v.SetDefault("milestones.onsite_state", "IN")

	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.directory", "reports")
	v.SetDefault("output.formats", []string{"json"})
}

func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}
