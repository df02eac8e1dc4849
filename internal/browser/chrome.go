package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/neboloop/browserd/internal/logging"
)

// State is a RunningChrome lifecycle state.
type State string

const (
	StateSpawning          State = "spawning"
	StateBranding          State = "branding"
	StateRespawning        State = "respawning"
	StateAwaitingReachable State = "awaiting-reachable"
	StateReady             State = "ready"
	StateTerminating       State = "terminating"
	StateTerminated        State = "terminated"
)

// RunningChrome represents a running browser instance owned by a Supervisor.
type RunningChrome struct {
	PID         int
	Executable  *BrowserExecutable
	UserDataDir string
	CDPPort     int
	StartedAt   time.Time

	mu     sync.Mutex
	state  State
	cmd    *exec.Cmd
	exited chan struct{}
}

// State returns the current lifecycle state.
func (r *RunningChrome) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *RunningChrome) setState(s State) {
	r.mu.Lock()
	prev := r.state
	if prev != StateTerminated {
		r.state = s
	}
	r.mu.Unlock()
	if prev != s {
		logging.Debugf("browser pid=%d state %s -> %s", r.PID, prev, s)
	}
}

// CDPURL is the HTTP base URL of the instance's debug endpoint.
func (r *RunningChrome) CDPURL() string {
	return cdpURL(r.CDPPort)
}

// Exited reports whether the current OS process has terminated.
func (r *RunningChrome) Exited() bool {
	r.mu.Lock()
	exited := r.exited
	r.mu.Unlock()
	if exited == nil {
		return true
	}
	select {
	case <-exited:
		return true
	default:
		return false
	}
}

// Done is closed when the current OS process terminates.
func (r *RunningChrome) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exited
}

func (r *RunningChrome) process() (*exec.Cmd, chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd, r.exited
}

// Supervisor launches and stops browser processes.
type Supervisor struct {
	// Locate resolves the executable; nil, nil means none installed.
	Locate func(customPath string) (*BrowserExecutable, error)
	// Command builds the process; exec.Command by default.
	Command func(name string, args ...string) *exec.Cmd
	// Probe checks the debug endpoint; IsChromeReachable by default.
	Probe func(cdpURL string, timeout time.Duration) bool
}

// NewSupervisor returns a Supervisor wired to the real system.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		Locate:  FindChromeExecutable,
		Command: exec.Command,
		Probe:   IsChromeReachable,
	}
}

// Launch starts a browser with remote debugging enabled and waits until its
// debug endpoint answers. On a profile that has never been decorated the
// browser is started once to create its preference files, stopped, branded
// and started again.
func (s *Supervisor) Launch(config *ResolvedConfig) (*RunningChrome, error) {
	if err := CheckPortAvailable(config.CDPPort); err != nil {
		return nil, err
	}

	exe, err := s.Locate(config.ExecutablePath)
	if err != nil {
		return nil, err
	}
	if exe == nil {
		return nil, fmt.Errorf("%w: no Chrome Canary, Chromium or Chrome install in any known %s location",
			ErrNoBrowserFound, runtime.GOOS)
	}

	userDataDir := config.UserDataDir
	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	needsBranding := !IsProfileDecorated(userDataDir)
	args := buildChromeArgs(userDataDir, config.CDPPort, config)

	running := &RunningChrome{
		Executable:  exe,
		UserDataDir: userDataDir,
		CDPPort:     config.CDPPort,
		state:       StateSpawning,
	}

	EnsureCleanExit(userDataDir)
	if err := s.spawn(running, args); err != nil {
		return nil, err
	}
	logging.Infof("browser started: %s (%s) pid=%d port=%d", exe.Path, exe.Kind, running.PID, config.CDPPort)

	if needsBranding {
		running.setState(StateBranding)
		if !waitFor(config.BootstrapTimeout, bootstrapPollInterval, func() bool { return !needsBootstrap(userDataDir) }) {
			logging.Warnf("browser did not create profile preferences within %s; branding anyway", config.BootstrapTimeout)
		}
		s.terminate(running, bootstrapExitGrace)

		if !DecorateProfile(userDataDir, config.ProfileName, config.Color) {
			logging.Warnf("profile %s could not be decorated; continuing undecorated", config.ProfileName)
		}
		EnsureCleanExit(userDataDir)

		running.setState(StateRespawning)
		if err := s.spawn(running, args); err != nil {
			running.setState(StateTerminated)
			return nil, err
		}
		logging.Infof("browser restarted after profile decoration pid=%d", running.PID)
	}

	running.setState(StateAwaitingReachable)
	url := running.CDPURL()
	ready := waitFor(config.ReadyTimeout, readyPollInterval, func() bool {
		return s.Probe(url, probeTimeout)
	})
	if !ready {
		cmd, _ := running.process()
		killChromeProcessGroup(cmd, true)
		running.setState(StateTerminated)
		return nil, fmt.Errorf("%w: debug port %d not reachable within %s", ErrLaunchTimeout, config.CDPPort, config.ReadyTimeout)
	}

	running.setState(StateReady)
	return running, nil
}

// Shutdown sends a graceful termination signal and waits up to timeout for
// the debug endpoint to stop answering, then escalates to a forced kill.
// After the forced kill the signal is delivered but exit is not re-verified.
func (s *Supervisor) Shutdown(running *RunningChrome, timeout time.Duration) error {
	if running == nil {
		return nil
	}
	cmd, exited := running.process()
	if cmd == nil || cmd.Process == nil || running.Exited() {
		running.setState(StateTerminated)
		return nil
	}

	running.setState(StateTerminating)
	killChromeProcessGroup(cmd, false)

	url := running.CDPURL()
	stopped := waitFor(timeout, stopPollInterval, func() bool {
		select {
		case <-exited:
			return true
		default:
		}
		return !s.Probe(url, stopPollInterval)
	})
	if !stopped {
		logging.Warnf("browser pid=%d still reachable after %s; killing", running.PID, timeout)
		killChromeProcessGroup(cmd, true)
	}

	running.setState(StateTerminated)
	return nil
}

func (s *Supervisor) spawn(running *RunningChrome, args []string) error {
	cmd := s.Command(running.Executable.Path, args...)
	setChromeProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser %s: %w", running.Executable.Path, err)
	}

	// Reap the process in the background so Exited is accurate and no zombie
	// is left behind.
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	running.mu.Lock()
	running.cmd = cmd
	running.exited = exited
	running.PID = cmd.Process.Pid
	running.StartedAt = time.Now()
	running.mu.Unlock()
	return nil
}

// terminate stops the current process: graceful signal, a short grace period,
// then a forced kill.
func (s *Supervisor) terminate(running *RunningChrome, grace time.Duration) {
	cmd, exited := running.process()
	if cmd == nil {
		return
	}
	killChromeProcessGroup(cmd, false)
	select {
	case <-exited:
		return
	case <-time.After(grace):
	}
	killChromeProcessGroup(cmd, true)
	select {
	case <-exited:
	case <-time.After(grace):
		logging.Warnf("browser pid=%d did not exit after kill", running.PID)
	}
}

// waitFor polls cond every interval until it is true or timeout elapses.
func waitFor(timeout, interval time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

func buildChromeArgs(userDataDir string, cdpPort int, config *ResolvedConfig) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", cdpPort),
		fmt.Sprintf("--user-data-dir=%s", userDataDir),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-sync",
		"--disable-background-networking",
		"--disable-component-update",
		"--disable-features=Translate,MediaRouter",
		"--disable-session-crashed-bubble",
		"--hide-crash-restore-bubble",
		"--metrics-recording-only",
		"--password-store=basic",
	}

	if config.Headless {
		// Older builds ignore these.
		args = append(args, "--headless=new", "--disable-gpu")
	}

	if config.NoSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox")
	}

	if runtime.GOOS == "linux" {
		args = append(args, "--disable-dev-shm-usage")
	}

	// Always open a blank tab to ensure a target exists
	args = append(args, "about:blank")

	return args
}
