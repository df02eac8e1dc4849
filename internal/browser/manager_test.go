package browser

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerScreenshot(t *testing.T) {
	skipWithoutProcessGroups(t)

	cfg := fakeConfig(t)
	m := NewManager(cfg, fakeSupervisor("normal"))
	t.Cleanup(func() { _ = m.Stop() })

	st := m.Status()
	assert.False(t, st.Running)
	assert.Zero(t, st.PID)

	img, err := m.Screenshot(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, fakeScreenshot, string(img))

	st = m.Status()
	assert.True(t, st.Running)
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, BrowserCustom, st.Kind)
	assert.Equal(t, "#00AAFF", st.Color)
	assert.NotZero(t, st.PID)

	tabs, err := m.Tabs()
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, "FAKE", tabs[0].ID)

	_, err = m.Screenshot(context.Background(), "MISSING", false)
	assert.ErrorIs(t, err, ErrTabNotFound)

	// A reachable browser is reused.
	running, err := m.EnsureRunning()
	require.NoError(t, err)
	assert.Equal(t, st.PID, running.PID)
	assert.Equal(t, 2, launchCount(t, cfg))

	require.NoError(t, m.Stop())
	assert.Equal(t, StateTerminated, running.State())
	assert.False(t, m.Status().Running)
	require.NoError(t, m.Stop())
}

func TestManagerRelaunchesDeadBrowser(t *testing.T) {
	skipWithoutProcessGroups(t)

	cfg := fakeConfig(t)
	m := NewManager(cfg, fakeSupervisor("normal"))
	t.Cleanup(func() { _ = m.Stop() })

	first, err := m.EnsureRunning()
	require.NoError(t, err)

	cmd, _ := first.process()
	killChromeProcessGroup(cmd, true)
	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("browser did not exit")
	}

	second, err := m.EnsureRunning()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.PID, second.PID)
	assert.Equal(t, StateTerminated, first.State())
}

func TestManagerTabsNotRunning(t *testing.T) {
	m := NewManager(fakeConfig(t), nil)
	_, err := m.Tabs()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestManagerDisabled(t *testing.T) {
	cfg := fakeConfig(t)
	cfg.Enabled = false
	m := NewManager(cfg, fakeSupervisor("normal"))

	_, err := m.EnsureRunning()
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = m.Screenshot(context.Background(), "", false)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.False(t, m.Status().Enabled)
}

func TestResolveConfigDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg := ResolveConfig(Config{Enabled: true, Color: "nope"}, dataDir)

	assert.Equal(t, DefaultCDPPort, cfg.CDPPort)
	assert.Equal(t, DefaultProfileName, cfg.ProfileName)
	assert.Equal(t, DefaultProfileColor, cfg.Color)
	assert.Equal(t, DefaultReadyTimeout, cfg.ReadyTimeout)
	assert.Equal(t, DefaultBootstrapTimeout, cfg.BootstrapTimeout)
	assert.Equal(t, DefaultStopTimeout, cfg.StopTimeout)
	assert.Equal(t, filepath.Join(dataDir, "browser", DefaultProfileName, "user-data"), cfg.UserDataDir)
	assert.Equal(t, "http://127.0.0.1:18800", cfg.CDPURL())
}

func TestResolveConfigOverrides(t *testing.T) {
	cfg := ResolveConfig(Config{
		CDPPort:      9333,
		ProfileName:  "work",
		Color:        "#abcdef",
		ReadyTimeout: time.Second,
		Headless:     true,
	}, "/data")

	assert.Equal(t, 9333, cfg.CDPPort)
	assert.Equal(t, "#ABCDEF", cfg.Color)
	assert.Equal(t, time.Second, cfg.ReadyTimeout)
	assert.True(t, cfg.Headless)
	assert.Equal(t, filepath.Join("/data", "browser", "work", "user-data"), cfg.UserDataDir)
}
