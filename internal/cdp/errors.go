package cdp

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed means the debug endpoint could not be reached.
	ErrConnectionFailed = errors.New("cdp: connection failed")

	// ErrConnectionClosed means the connection closed before a response arrived.
	ErrConnectionClosed = errors.New("cdp: connection closed")

	// ErrCaptureFailed means the capture response carried no image data.
	ErrCaptureFailed = errors.New("cdp: capture failed")
)

// CommandError is an error frame returned by the remote side for a command.
type CommandError struct {
	Method  string
	Code    int64
	Message string
}

func (e *CommandError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("cdp: %s failed: %s (code %d)", e.Method, e.Message, e.Code)
	}
	return fmt.Sprintf("cdp: %s failed: %s", e.Method, e.Message)
}
