package browser

import (
	"fmt"
	"time"

	"github.com/neboloop/browserd/internal/defaults"
)

// Config is the browser section of the browserd config file.
type Config struct {
	// Enabled controls whether the control server may launch a browser.
	Enabled bool `yaml:"enabled"`

	// ExecutablePath overrides auto-detection of the browser binary.
	ExecutablePath string `yaml:"executable_path,omitempty"`

	// Headless runs the browser without UI.
	Headless bool `yaml:"headless,omitempty"`

	// NoSandbox disables the Chromium sandbox (needed in some containers).
	NoSandbox bool `yaml:"no_sandbox,omitempty"`

	// CDPPort is the remote debugging port.
	CDPPort int `yaml:"cdp_port,omitempty"`

	// ProfileName selects the managed profile directory.
	ProfileName string `yaml:"profile_name,omitempty"`

	// Color is the profile accent color (hex, e.g. "#FF4500").
	Color string `yaml:"color,omitempty"`

	ReadyTimeout     time.Duration `yaml:"ready_timeout,omitempty"`
	BootstrapTimeout time.Duration `yaml:"bootstrap_timeout,omitempty"`
	StopTimeout      time.Duration `yaml:"stop_timeout,omitempty"`
}

// DefaultConfig returns the default browser configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		CDPPort:          DefaultCDPPort,
		ProfileName:      DefaultProfileName,
		Color:            DefaultProfileColor,
		ReadyTimeout:     DefaultReadyTimeout,
		BootstrapTimeout: DefaultBootstrapTimeout,
		StopTimeout:      DefaultStopTimeout,
	}
}

// ResolvedConfig is the fully resolved browser configuration.
type ResolvedConfig struct {
	Enabled          bool
	ExecutablePath   string
	Headless         bool
	NoSandbox        bool
	CDPPort          int
	ProfileName      string
	Color            string
	UserDataDir      string
	ReadyTimeout     time.Duration
	BootstrapTimeout time.Duration
	StopTimeout      time.Duration
}

// ResolveConfig applies defaults and derives the profile directory from the
// data directory. The profile directory is never caller supplied.
func ResolveConfig(cfg Config, dataDir string) *ResolvedConfig {
	resolved := &ResolvedConfig{
		Enabled:          cfg.Enabled,
		ExecutablePath:   cfg.ExecutablePath,
		Headless:         cfg.Headless,
		NoSandbox:        cfg.NoSandbox,
		CDPPort:          cfg.CDPPort,
		ProfileName:      cfg.ProfileName,
		Color:            NormalizeColor(cfg.Color),
		ReadyTimeout:     cfg.ReadyTimeout,
		BootstrapTimeout: cfg.BootstrapTimeout,
		StopTimeout:      cfg.StopTimeout,
	}

	if resolved.CDPPort == 0 {
		resolved.CDPPort = DefaultCDPPort
	}
	if resolved.ProfileName == "" {
		resolved.ProfileName = DefaultProfileName
	}
	if resolved.ReadyTimeout <= 0 {
		resolved.ReadyTimeout = DefaultReadyTimeout
	}
	if resolved.BootstrapTimeout <= 0 {
		resolved.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if resolved.StopTimeout <= 0 {
		resolved.StopTimeout = DefaultStopTimeout
	}

	resolved.UserDataDir = defaults.ProfileDir(dataDir, resolved.ProfileName)
	return resolved
}

// CDPURL is the HTTP base URL of the debug endpoint.
func (c *ResolvedConfig) CDPURL() string {
	return cdpURL(c.CDPPort)
}

func cdpURL(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}
