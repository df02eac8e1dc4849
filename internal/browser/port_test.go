package browser

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPortAvailable(t *testing.T) {
	assert.NoError(t, CheckPortAvailable(freePort(t)))
}

func TestCheckPortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = CheckPortAvailable(port)
	require.ErrorIs(t, err, ErrPortUnavailable)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}
