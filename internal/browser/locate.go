package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// BrowserKind identifies the type of Chromium-based browser.
type BrowserKind string

const (
	BrowserCanary   BrowserKind = "canary"
	BrowserChromium BrowserKind = "chromium"
	BrowserStable   BrowserKind = "stable"
	BrowserCustom   BrowserKind = "custom"
)

// BrowserExecutable represents a found browser binary.
type BrowserExecutable struct {
	Kind BrowserKind
	Path string
}

type candidate struct {
	kind BrowserKind
	path string
}

// Locator searches a fixed, priority-ordered list of install locations.
type Locator struct {
	GOOS   string
	Getenv func(string) string
	Exists func(string) bool
}

// NewLocator returns a Locator for the running platform.
func NewLocator() *Locator {
	return &Locator{GOOS: runtime.GOOS, Getenv: os.Getenv, Exists: fileExists}
}

// Find returns the first existing candidate, or nil when none is installed.
// Platforms without a known layout always return nil.
func (l *Locator) Find() *BrowserExecutable {
	for _, c := range l.candidates() {
		if l.Exists(c.path) {
			return &BrowserExecutable{Kind: c.kind, Path: c.path}
		}
	}
	return nil
}

func (l *Locator) candidates() []candidate {
	switch l.GOOS {
	case "darwin":
		return l.macCandidates()
	case "linux":
		return l.linuxCandidates()
	case "windows":
		return l.windowsCandidates()
	default:
		return nil
	}
}

// FindChromeExecutable finds a browser on the system. A custom path must exist;
// auto-detection returns (nil, nil) when nothing is installed.
func FindChromeExecutable(customPath string) (*BrowserExecutable, error) {
	if customPath != "" {
		if !fileExists(customPath) {
			return nil, fmt.Errorf("%w: configured executable %s does not exist", ErrNoBrowserFound, customPath)
		}
		return &BrowserExecutable{Kind: BrowserCustom, Path: customPath}, nil
	}
	return NewLocator().Find(), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// macOS: canary, then Chromium, then Chrome; system-wide before per-user.
func (l *Locator) macCandidates() []candidate {
	home := l.Getenv("HOME")
	apps := []struct {
		kind   BrowserKind
		bundle string
	}{
		{BrowserCanary, "Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary"},
		{BrowserChromium, "Chromium.app/Contents/MacOS/Chromium"},
		{BrowserStable, "Google Chrome.app/Contents/MacOS/Google Chrome"},
	}

	var out []candidate
	for _, a := range apps {
		out = append(out, candidate{a.kind, filepath.Join("/Applications", a.bundle)})
		if home != "" {
			out = append(out, candidate{a.kind, filepath.Join(home, "Applications", a.bundle)})
		}
	}
	return out
}

// Linux: packaged binaries first, then ~/.local/bin.
func (l *Locator) linuxCandidates() []candidate {
	home := l.Getenv("HOME")
	bins := []struct {
		kind  BrowserKind
		names []string
	}{
		{BrowserCanary, []string{"google-chrome-unstable", "google-chrome-canary"}},
		{BrowserChromium, []string{"chromium", "chromium-browser"}},
		{BrowserStable, []string{"google-chrome-stable", "google-chrome"}},
	}

	var out []candidate
	for _, b := range bins {
		for _, name := range b.names {
			out = append(out, candidate{b.kind, filepath.Join("/usr/bin", name)})
		}
		if b.kind == BrowserChromium {
			out = append(out, candidate{b.kind, "/snap/bin/chromium"})
		}
		if home != "" {
			for _, name := range b.names {
				out = append(out, candidate{b.kind, filepath.Join(home, ".local", "bin", name)})
			}
		}
	}
	return out
}

// Windows: Program Files first, then %LOCALAPPDATA%.
func (l *Locator) windowsCandidates() []candidate {
	programFiles := l.Getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	localAppData := l.Getenv("LOCALAPPDATA")

	installs := []struct {
		kind BrowserKind
		rel  string
	}{
		{BrowserCanary, filepath.Join("Google", "Chrome SxS", "Application", "chrome.exe")},
		{BrowserChromium, filepath.Join("Chromium", "Application", "chrome.exe")},
		{BrowserStable, filepath.Join("Google", "Chrome", "Application", "chrome.exe")},
	}

	var out []candidate
	for _, in := range installs {
		out = append(out, candidate{in.kind, filepath.Join(programFiles, in.rel)})
		if localAppData != "" {
			out = append(out, candidate{in.kind, filepath.Join(localAppData, in.rel)})
		}
	}
	return out
}
