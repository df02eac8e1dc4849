// Package browser supervises a locally launched Chromium-based browser:
// locating the executable, branding its dedicated profile, launching it with
// remote debugging enabled and shutting it down again.
package browser

import (
	"path/filepath"
	"time"
)

// Default profile constants
const (
	// DefaultProfileName is the default managed browser profile name.
	DefaultProfileName = "browserd"

	// DefaultProfileColor is used whenever a configured color does not normalise.
	DefaultProfileColor = "#FF4500"

	// DefaultCDPPort is the default remote debugging port for the managed browser.
	DefaultCDPPort = 18800

	// DefaultControlPort is the port for the browser control HTTP server.
	DefaultControlPort = 18791
)

// Launch and shutdown timing
const (
	DefaultReadyTimeout     = 15 * time.Second
	DefaultBootstrapTimeout = 5 * time.Second
	DefaultStopTimeout      = 2500 * time.Millisecond

	readyPollInterval     = 200 * time.Millisecond
	bootstrapPollInterval = 100 * time.Millisecond
	stopPollInterval      = 100 * time.Millisecond

	// probeTimeout bounds a single reachability check inside a polling loop.
	probeTimeout = 500 * time.Millisecond

	// bootstrapExitGrace is how long the throwaway first-run process gets to
	// exit after the graceful signal before it is killed.
	bootstrapExitGrace = 500 * time.Millisecond
)

// Profile file layout, relative to the user data directory.
const (
	localStateFile  = "Local State"
	decoratedMarker = ".browserd-profile-decorated"
)

var preferencesFile = filepath.Join("Default", "Preferences")
