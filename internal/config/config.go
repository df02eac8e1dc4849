package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/neboloop/browserd/internal/browser"
	"github.com/neboloop/browserd/internal/defaults"
)

// ServerConfig is the control server section.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr is the host:port the control server binds.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL is the base URL clients use to reach the control server.
func (s ServerConfig) URL() string {
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Port)
}

// LoggingConfig is the logging section.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Browser browser.Config `yaml:"browser"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration built into the binary.
func Default() (Config, error) {
	data, err := defaults.GetDefault(defaults.ConfigFile)
	if err != nil {
		return Config{}, fmt.Errorf("read embedded config: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	c := Config{Browser: browser.DefaultConfig()}
	if err := overlay(&c, data); err != nil {
		return c, err
	}
	return c, nil
}

func overlay(c *Config, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Load returns the embedded defaults overlaid with the file at path. An empty
// path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	c, err := Default()
	if err != nil {
		return c, err
	}
	if path == "" {
		return c, c.Validate()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, c.Validate()
	}
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := overlay(&c, data); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1..65535", c.Server.Port)
	}
	if c.Browser.CDPPort < 1 || c.Browser.CDPPort > 65535 {
		return fmt.Errorf("browser.cdp_port %d out of range 1..65535", c.Browser.CDPPort)
	}
	if c.Server.Port == c.Browser.CDPPort {
		return fmt.Errorf("server.port and browser.cdp_port must differ (both %d)", c.Server.Port)
	}
	timeouts := []struct {
		name string
		v    time.Duration
	}{
		{"browser.ready_timeout", c.Browser.ReadyTimeout},
		{"browser.bootstrap_timeout", c.Browser.BootstrapTimeout},
		{"browser.stop_timeout", c.Browser.StopTimeout},
	}
	for _, t := range timeouts {
		if t.v <= 0 {
			return fmt.Errorf("%s must be positive", t.name)
		}
	}
	return nil
}

// ResolveBrowser resolves the browser section against the data directory.
func (c Config) ResolveBrowser(dataDir string) *browser.ResolvedConfig {
	return browser.ResolveConfig(c.Browser, dataDir)
}
