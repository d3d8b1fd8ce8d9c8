package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"plansync/internal/match"
)

// Config holds all application configuration
type Config struct {
	PlanSource     PlanSourceConfig `yaml:"plan_source"`
	Host           HostConfig       `yaml:"host"`
	Tool           ToolConfig       `yaml:"tool"`
	Sync           SyncConfig       `yaml:"sync"`
	MediaOverrides []MediaOverride  `yaml:"media_overrides"`
}

// PlanSourceConfig holds plan-source API settings. Either a static access
// token or an OAuth client id/secret pair must be present.
type PlanSourceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TokenURL       string `yaml:"token_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	AccessToken    string `yaml:"access_token"`
	ServiceTypeID  string `yaml:"service_type_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request deadline for plan-source calls
func (c *PlanSourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HostConfig holds the presentation host's API endpoint and the names of
// the host-side entities the engine resolves at run time
type HostConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AppName        string `yaml:"app_name"`
	LibraryRoot    string `yaml:"library_root"`
	LibraryName    string `yaml:"library_name"`
	PlaylistName   string `yaml:"playlist_name"`
	TitlesPlaylist string `yaml:"titles_playlist"`
	TimerName      string `yaml:"timer_name"`
	ClearProp      string `yaml:"clear_prop"`
	AudienceLook   string `yaml:"audience_look"`
	StageLayout    string `yaml:"stage_layout"`
}

// Timeout returns the per-request deadline for host API calls
func (c *HostConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ToolConfig locates the out-of-process rewrite toolchain
type ToolConfig struct {
	Command        string `yaml:"command"`
	ScriptsDir     string `yaml:"scripts_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the deadline for one rewrite tool invocation
func (c *ToolConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig holds run behavior knobs
type SyncConfig struct {
	NoReopen              bool   `yaml:"no_reopen"`
	ReadyTimeoutSeconds   int    `yaml:"ready_timeout_seconds"`
	TerminateGraceSeconds int    `yaml:"terminate_grace_seconds"`
	BackupDir             string `yaml:"backup_dir"`
	LowerThirdsDir        string `yaml:"lower_thirds_dir"`
	UpdatePlaylist        bool   `yaml:"update_playlist"`
	TransitionLabel       string `yaml:"transition_label"`
}

// ReadyTimeout returns the readiness-poll deadline, one minute when unset
func (c *SyncConfig) ReadyTimeout() time.Duration {
	secs := c.ReadyTimeoutSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

// TerminateGrace returns how long a graceful quit may take before the
// forceful kill
func (c *SyncConfig) TerminateGrace() time.Duration {
	return time.Duration(c.TerminateGraceSeconds) * time.Second
}

// MediaOverride is one forced topic-to-asset mapping
type MediaOverride struct {
	Pattern string `yaml:"pattern"`
	Target  string `yaml:"target"`
}

// Load reads configuration from file, applies environment overrides for
// secrets, fills defaults, and validates
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file
func (c *Config) applyEnv() {
	if v := os.Getenv("PLANSYNC_CLIENT_ID"); v != "" {
		c.PlanSource.ClientID = v
	}
	if v := os.Getenv("PLANSYNC_CLIENT_SECRET"); v != "" {
		c.PlanSource.ClientSecret = v
	}
	if v := os.Getenv("PLANSYNC_ACCESS_TOKEN"); v != "" {
		c.PlanSource.AccessToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.PlanSource.BaseURL == "" {
		c.PlanSource.BaseURL = "https://api.planhub.com/v2"
	}
	if c.PlanSource.TokenURL == "" {
		c.PlanSource.TokenURL = "https://api.planhub.com/oauth/token"
	}
	if c.PlanSource.TimeoutSeconds <= 0 {
		c.PlanSource.TimeoutSeconds = 8
	}

	if c.Host.BaseURL == "" {
		c.Host.BaseURL = "http://127.0.0.1:1025"
	}
	if c.Host.TimeoutSeconds <= 0 {
		c.Host.TimeoutSeconds = 5
	}
	if c.Host.AppName == "" {
		c.Host.AppName = "Presenter"
	}
	if c.Host.TitlesPlaylist == "" {
		c.Host.TitlesPlaylist = "Titles"
	}
	if c.Host.TimerName == "" {
		c.Host.TimerName = "Service Timer"
	}
	if c.Host.ClearProp == "" {
		c.Host.ClearProp = "Logo"
	}
	if c.Host.AudienceLook == "" {
		c.Host.AudienceLook = "Full Screen Media"
	}

	if c.Tool.Command == "" {
		c.Tool.Command = "python3"
	}
	if c.Tool.ScriptsDir == "" {
		c.Tool.ScriptsDir = "scripts"
	}
	if c.Tool.TimeoutSeconds <= 0 {
		c.Tool.TimeoutSeconds = 120
	}

	if c.Sync.ReadyTimeoutSeconds <= 0 {
		c.Sync.ReadyTimeoutSeconds = 60
	}
	if c.Sync.TerminateGraceSeconds <= 0 {
		c.Sync.TerminateGraceSeconds = 15
	}
	if c.Sync.BackupDir == "" {
		c.Sync.BackupDir = "backups"
	}
	if c.Sync.TransitionLabel == "" {
		c.Sync.TransitionLabel = "Background & Lights"
	}
}

// validate checks if configuration is valid
func (c *Config) validate() error {
	if c.PlanSource.AccessToken == "" {
		if c.PlanSource.ClientID == "" {
			return fmt.Errorf("plan_source.client_id is required when no access_token is set")
		}
		if c.PlanSource.ClientSecret == "" {
			return fmt.Errorf("plan_source.client_secret is required when no access_token is set")
		}
	}
	for _, ov := range c.MediaOverrides {
		if ov.Pattern == "" || ov.Target == "" {
			return fmt.Errorf("media_overrides entries need both pattern and target")
		}
		if _, err := regexp.Compile(ov.Pattern); err != nil {
			return fmt.Errorf("media_overrides pattern %q: %w", ov.Pattern, err)
		}
	}
	return nil
}

// CompiledOverrides turns the override table into matcher form. Patterns
// were syntax-checked at load time.
func (c *Config) CompiledOverrides() []match.Override {
	var out []match.Override
	for _, ov := range c.MediaOverrides {
		re, err := regexp.Compile(ov.Pattern)
		if err != nil {
			continue
		}
		out = append(out, match.Override{Pattern: re, Target: ov.Target})
	}
	return out
}
