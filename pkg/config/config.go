// Package config handles workspace configuration for fitrunner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/jsengine"
)

// Config represents the workspace configuration (fitrunner.yaml).
type Config struct {
	// App under test
	AppID string `yaml:"appId"` // Bundle ID / package name

	// Automation agent
	AgentURL      string `yaml:"agentUrl"`      // On-device agent base URL
	FindTimeoutMs int    `yaml:"findTimeoutMs"` // Default element find timeout (ms)

	// Backend API
	APIBaseURL string `yaml:"apiBaseUrl"`
	APIToken   string `yaml:"apiToken"` // Usually set via FITRUNNER_API_TOKEN

	// Spec selection
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`

	// Execution settings
	Parallelism int               `yaml:"parallelism"` // 0 = sequential
	Retries     int               `yaml:"retries"`     // Per-spec retries
	StopOnFail  bool              `yaml:"stopOnFail"`
	OutputDir   string            `yaml:"outputDir"`
	Env         map[string]string `yaml:"env"`

	// Locator overrides file (see selector.LoadOverrides)
	LocatorsFile string `yaml:"locatorsFile"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// LoadFromDir looks for fitrunner.yaml or fitrunner.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"fitrunner.yaml", "fitrunner.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return defaults
	cfg := &Config{}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("FITRUNNER_AGENT_URL"); v != "" {
		c.AgentURL = v
	}
	if v := os.Getenv("FITRUNNER_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("FITRUNNER_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("FITRUNNER_APP_ID"); v != "" {
		c.AppID = v
	}
}

// Validate checks required fields for a device run.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return core.ErrMissingRequired.WithMessage("appId is required")
	}
	if c.AgentURL == "" {
		return core.ErrMissingRequired.WithMessage("agentUrl is required")
	}
	return nil
}

// ResolveEnv evaluates ${expr} placeholders in the env map through the
// expression engine and returns the resolved spec parameters:
//
//	env:
//	  weekStart: "2026-08-24"
//	  warmupSets: "${2 + 1}"
func (c *Config) ResolveEnv() (map[string]string, error) {
	params := make(map[string]string, len(c.Env))
	eng := jsengine.New()
	for key, value := range c.Env {
		resolved, err := eng.Interpolate(value)
		if err != nil {
			return nil, core.ErrInvalidConfig.WithCause(err).WithMessage(
				fmt.Sprintf("env %q: %v", key, err))
		}
		params[key] = resolved
	}
	return params, nil
}

// FindTimeout returns the configured find timeout as a duration.
func (c *Config) FindTimeout() time.Duration {
	return time.Duration(c.FindTimeoutMs) * time.Millisecond
}

// OutputDirOrDefault returns the configured output dir or ./fitrunner-out.
func (c *Config) OutputDirOrDefault() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return "fitrunner-out"
}
