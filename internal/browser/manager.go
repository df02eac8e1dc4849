package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neboloop/browserd/internal/cdp"
	"github.com/neboloop/browserd/internal/logging"
	"github.com/neboloop/browserd/internal/metrics"
)

// Manager owns at most one managed browser and serialises start, stop and
// capture requests against it.
type Manager struct {
	mu sync.Mutex

	config     *ResolvedConfig
	supervisor *Supervisor
	running    *RunningChrome
}

// NewManager creates a Manager for the resolved config.
func NewManager(config *ResolvedConfig, supervisor *Supervisor) *Manager {
	if supervisor == nil {
		supervisor = NewSupervisor()
	}
	return &Manager{config: config, supervisor: supervisor}
}

// Config returns the resolved config.
func (m *Manager) Config() *ResolvedConfig {
	return m.config
}

// EnsureRunning returns the managed browser, launching it when it is not
// running or has stopped answering.
func (m *Manager) EnsureRunning() (*RunningChrome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureRunningLocked()
}

func (m *Manager) ensureRunningLocked() (*RunningChrome, error) {
	if !m.config.Enabled {
		return nil, ErrDisabled
	}

	if m.running != nil {
		if !m.running.Exited() && m.supervisor.Probe(m.running.CDPURL(), time.Second) {
			return m.running, nil
		}
		// Browser died or hung, clean up
		logging.Warnf("managed browser pid=%d no longer reachable; relaunching", m.running.PID)
		_ = m.supervisor.Shutdown(m.running, m.config.StopTimeout)
		m.running = nil
		metrics.ObserveStopped()
	}

	start := time.Now()
	running, err := m.supervisor.Launch(m.config)
	metrics.ObserveLaunch(err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser for profile %s: %w", m.config.ProfileName, err)
	}
	m.running = running
	return running, nil
}

// Stop shuts the managed browser down. Stopping when nothing runs is a no-op.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running == nil {
		return nil
	}
	err := m.supervisor.Shutdown(m.running, m.config.StopTimeout)
	m.running = nil
	metrics.ObserveStopped()
	return err
}

// Status describes the managed browser.
type Status struct {
	Enabled     bool        `json:"enabled"`
	Profile     string      `json:"profile"`
	Running     bool        `json:"running"`
	State       State       `json:"state,omitempty"`
	PID         int         `json:"pid,omitempty"`
	CDPPort     int         `json:"cdpPort"`
	CDPURL      string      `json:"cdpUrl"`
	Executable  string      `json:"executable,omitempty"`
	Kind        BrowserKind `json:"kind,omitempty"`
	UserDataDir string      `json:"userDataDir"`
	Color       string      `json:"color"`
	Headless    bool        `json:"headless"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
}

// Status reports the managed browser's state without launching it.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Enabled:     m.config.Enabled,
		Profile:     m.config.ProfileName,
		CDPPort:     m.config.CDPPort,
		CDPURL:      m.config.CDPURL(),
		UserDataDir: m.config.UserDataDir,
		Color:       m.config.Color,
		Headless:    m.config.Headless,
	}
	if r := m.running; r != nil {
		st.State = r.State()
		st.PID = r.PID
		st.Executable = r.Executable.Path
		st.Kind = r.Executable.Kind
		started := r.StartedAt
		st.StartedAt = &started
		st.Running = !r.Exited() && m.supervisor.Probe(r.CDPURL(), time.Second)
	}
	return st
}

// Tabs lists the debuggable targets of the managed browser.
func (m *Manager) Tabs() ([]Tab, error) {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	if running == nil {
		return nil, ErrNotRunning
	}
	return ListTabs(running.CDPURL(), 2*time.Second)
}

// Screenshot ensures the browser is running and captures a PNG of the given
// tab, or of the first page when targetID is empty.
func (m *Manager) Screenshot(ctx context.Context, targetID string, fullPage bool) ([]byte, error) {
	m.mu.Lock()
	running, err := m.ensureRunningLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tabs, err := ListTabs(running.CDPURL(), 2*time.Second)
	if err != nil {
		return nil, err
	}
	tab, err := PickTab(tabs, targetID)
	if err != nil {
		return nil, err
	}

	logging.Infof("capturing tab %s (%s) fullPage=%t", tab.ID, tab.URL, fullPage)
	start := time.Now()
	img, err := cdp.Capture(ctx, tab.WebSocketDebuggerURL, cdp.CaptureOptions{FullPage: fullPage})
	metrics.ObserveCapture(fullPage, err, time.Since(start))
	return img, err
}
