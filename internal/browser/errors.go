package browser

import "errors"

var (
	// ErrPortUnavailable means a listener already occupies the debug port.
	ErrPortUnavailable = errors.New("port unavailable")

	// ErrNoBrowserFound means no browser executable could be located.
	ErrNoBrowserFound = errors.New("no supported browser found")

	// ErrLaunchTimeout means the debug endpoint never became reachable.
	ErrLaunchTimeout = errors.New("browser launch timed out")

	// ErrTabNotFound means no debuggable page matched the request.
	ErrTabNotFound = errors.New("tab not found")

	// ErrNotRunning means the operation needs a launched browser.
	ErrNotRunning = errors.New("browser not running")

	// ErrDisabled means browser automation is turned off in the config.
	ErrDisabled = errors.New("browser automation disabled")
)
