//go:build !windows

package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()

	file, err := acquireLock(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, lockFile))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	// flock is per open file description, so a second open conflicts.
	_, err = acquireLock(dir)
	assert.ErrorIs(t, err, errAlreadyRunning)

	releaseLock(file)
	again, err := acquireLock(dir)
	require.NoError(t, err)
	releaseLock(again)
}
