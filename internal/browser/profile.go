package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/neboloop/browserd/internal/logging"
)

// prefPatch assigns value at a key path inside a preferences document.
type prefPatch struct {
	path  []string
	value any
}

func patch(path string, value any) prefPatch {
	return prefPatch{path: strings.Split(path, "."), value: value}
}

// NormalizeColor returns an uppercase #RRGGBB string, or DefaultProfileColor
// when the input is not six hex digits with an optional leading '#'.
func NormalizeColor(color string) string {
	hex := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(hex) != 6 {
		return DefaultProfileColor
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return DefaultProfileColor
	}
	return "#" + strings.ToUpper(hex)
}

// colorToSkia converts #RRGGBB into the signed ARGB integer Chromium stores.
func colorToSkia(color string) int64 {
	rgb, _ := strconv.ParseUint(strings.TrimPrefix(NormalizeColor(color), "#"), 16, 32)
	return int64(int32(uint32(0xFF000000) | uint32(rgb)))
}

// setPath assigns value at path, creating intermediate objects. A traversed
// key holding a non-object value is replaced with an empty object.
func setPath(root map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	key := path[0]
	if len(path) == 1 {
		root[key] = value
		return
	}
	next, ok := root[key].(map[string]any)
	if !ok {
		next = map[string]any{}
		root[key] = next
	}
	setPath(next, path[1:], value)
}

// getPath reads the value at path, reporting whether it exists.
func getPath(root map[string]any, path []string) (any, bool) {
	var cur any = root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func readPrefs(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		// Unparseable preferences are replaced rather than blocking branding.
		return map[string]any{}, nil
	}
	return doc, nil
}

// patchPrefsFile merges patches into the JSON document at path, creating it
// and its parent directory if needed.
func patchPrefsFile(path string, patches []prefPatch) error {
	doc, err := readPrefs(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, p := range patches {
		setPath(doc, p.path, p.value)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func localStatePatches(name, color string) []prefPatch {
	skia := colorToSkia(color)
	return []prefPatch{
		patch("profile.info_cache.Default.name", name),
		patch("profile.info_cache.Default.shortcut_name", name),
		patch("profile.info_cache.Default.user_name", name),
		patch("profile.info_cache.Default.is_using_default_name", false),
		patch("profile.info_cache.Default.profile_color_seed", skia),
		patch("profile.info_cache.Default.default_avatar_fill_color", skia),
	}
}

func preferencesPatches(name, color string) []prefPatch {
	skia := colorToSkia(color)
	return []prefPatch{
		patch("profile.name", name),
		patch("browser.theme.user_color2", skia),
		patch("autogenerated.theme.color", skia),
	}
}

// DecorateProfile brands the profile with a display name and accent color and
// then writes the decoration marker. Failures are logged and swallowed; the
// returned value reports whether the marker was written.
func DecorateProfile(userDataDir, name, color string) bool {
	if name == "" {
		name = DefaultProfileName
	}
	color = NormalizeColor(color)

	ok := true
	if err := patchPrefsFile(filepath.Join(userDataDir, localStateFile), localStatePatches(name, color)); err != nil {
		logging.Warnf("profile decoration: %v", err)
		ok = false
	}
	if err := patchPrefsFile(filepath.Join(userDataDir, preferencesFile), preferencesPatches(name, color)); err != nil {
		logging.Warnf("profile decoration: %v", err)
		ok = false
	}
	if !ok {
		return false
	}

	marker := filepath.Join(userDataDir, decoratedMarker)
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)), 0644); err != nil {
		logging.Warnf("profile decoration marker: %v", err)
		return false
	}
	return true
}

// IsProfileDecorated reports whether a non-empty decoration marker exists.
func IsProfileDecorated(userDataDir string) bool {
	info, err := os.Stat(filepath.Join(userDataDir, decoratedMarker))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// EnsureCleanExit marks the last session as cleanly exited so the browser
// does not offer to restore it. Only an existing Preferences file is touched.
func EnsureCleanExit(userDataDir string) {
	path := filepath.Join(userDataDir, preferencesFile)
	if !fileExists(path) {
		return
	}
	err := patchPrefsFile(path, []prefPatch{
		patch("profile.exit_type", "Normal"),
		patch("profile.exited_cleanly", true),
	})
	if err != nil {
		logging.Warnf("profile clean exit: %v", err)
	}
}

func needsBootstrap(userDataDir string) bool {
	return !fileExists(filepath.Join(userDataDir, localStateFile)) ||
		!fileExists(filepath.Join(userDataDir, preferencesFile))
}
