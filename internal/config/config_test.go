package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, 18791, c.Server.Port)
	assert.True(t, c.Browser.Enabled)
	assert.Equal(t, 18800, c.Browser.CDPPort)
	assert.Equal(t, "browserd", c.Browser.ProfileName)
	assert.Equal(t, "#FF4500", c.Browser.Color)
	assert.Equal(t, 15*time.Second, c.Browser.ReadyTimeout)
	assert.Equal(t, 5*time.Second, c.Browser.BootstrapTimeout)
	assert.Equal(t, 2500*time.Millisecond, c.Browser.StopTimeout)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestLoadOverlaysUserFile(t *testing.T) {
	t.Setenv("BROWSERD_TEST_CHROME", "/opt/chrome/chrome")
	path := filepath.Join(t.TempDir(), "browserd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
browser:
  executable_path: ${BROWSERD_TEST_CHROME}
  headless: true
  cdp_port: 9333
logging:
  level: debug
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/chrome/chrome", c.Browser.ExecutablePath)
	assert.True(t, c.Browser.Headless)
	assert.Equal(t, 9333, c.Browser.CDPPort)
	assert.Equal(t, "debug", c.Logging.Level)
	// Untouched keys keep their defaults.
	assert.True(t, c.Browser.Enabled)
	assert.Equal(t, "browserd", c.Browser.ProfileName)
	assert.Equal(t, 18791, c.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 18800, c.Browser.CDPPort)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestValidate(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"server port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"cdp port too big", func(c *Config) { c.Browser.CDPPort = 70000 }, "browser.cdp_port"},
		{"same ports", func(c *Config) { c.Browser.CDPPort = c.Server.Port }, "must differ"},
		{"zero ready timeout", func(c *Config) { c.Browser.ReadyTimeout = 0 }, "ready_timeout"},
		{"negative stop timeout", func(c *Config) { c.Browser.StopTimeout = -time.Second }, "stop_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "127.0.0.1:18791", ServerConfig{Host: "127.0.0.1", Port: 18791}.Addr())
	assert.Equal(t, "http://127.0.0.1:18791", ServerConfig{Host: "0.0.0.0", Port: 18791}.URL())
	assert.Equal(t, "http://localhost:1", ServerConfig{Host: "localhost", Port: 1}.URL())
}

func TestResolveBrowser(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	dir := t.TempDir()
	r := c.ResolveBrowser(dir)
	assert.Equal(t, filepath.Join(dir, "browser", "browserd", "user-data"), r.UserDataDir)
	assert.Equal(t, 18800, r.CDPPort)
}
