package defaults

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefault(t *testing.T) {
	content, err := GetDefault(ConfigFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "cdp_port:")
}

func TestDataDirOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("BROWSERD_DATA_DIR", tmp)

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, tmp, dir)
}

func TestEnsureDataDir(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "nested")
	t.Setenv("BROWSERD_DATA_DIR", tmp)

	dir, err := EnsureDataDir()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Existing files are left alone unless reset.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("custom"), 0644))
	_, err = EnsureDataDir()
	require.NoError(t, err)
	data, _ = os.ReadFile(filepath.Join(dir, ConfigFile))
	assert.Equal(t, "custom", string(data))

	require.NoError(t, Reset(dir))
	data, _ = os.ReadFile(filepath.Join(dir, ConfigFile))
	assert.NotEqual(t, "custom", string(data))
}

func TestProfileDir(t *testing.T) {
	got := ProfileDir("/data", "browserd")
	assert.Equal(t, filepath.Join("/data", "browser", "browserd", "user-data"), got)
}
