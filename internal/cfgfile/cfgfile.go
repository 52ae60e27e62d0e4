// Package cfgfile reads and writes the shared KEY="value" config file used
// by both setup tools. Each tool owns a disjoint set of keys; Save rewrites
// only the owned keys and preserves every other line of the file verbatim,
// so the two tools can update the same file without disturbing each other.
package cfgfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// DefaultPath returns the default config file location (~/.macos-setup.cfg).
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".macos-setup.cfg")
	}
	return ".macos-setup.cfg"
}

const fileHeader = "# macOS setup configuration. Shared by macapps and macprefs."

// Load parses KEY="value" assignments from the file at path. Comment lines
// and lines that don't look like assignments are ignored. If the same key
// is assigned more than once the last assignment wins.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := parseAssignment(scanner.Text())
		if !ok {
			continue
		}
		values[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return values, nil
}

// Save rewrites the owned-key block of the file at path. Lines assigning
// keys outside owned (and all comments) are kept byte-for-byte; every owned
// key is written exactly once with its value from values, or an empty
// string if absent. The write goes through a temp file and rename so a
// failure mid-write never truncates the existing file.
func Save(path string, owned []string, values map[string]string) error {
	ownedSet := make(map[string]bool, len(owned))
	for _, k := range owned {
		ownedSet[k] = true
	}

	var kept []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if key, _, ok := parseAssignment(line); ok && ownedSet[key] {
				continue
			}
			kept = append(kept, line)
		}
	case os.IsNotExist(err):
		kept = []string{fileHeader}
	default:
		return fmt.Errorf("reading config file: %w", err)
	}

	var b strings.Builder
	for _, line := range kept {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "# --- generated %s ---\n", time.Now().Format(time.RFC3339))
	for _, k := range owned {
		fmt.Fprintf(&b, "%s=%q\n", k, values[k])
	}

	return writeAtomic(path, []byte(b.String()))
}

// parseAssignment recognizes KEY="value" and KEY=value lines, with optional
// surrounding whitespace. Keys are uppercase-with-underscores identifiers.
func parseAssignment(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	for _, r := range key {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "", "", false
		}
	}
	value = strings.TrimSpace(line[eq+1:])
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".macsetup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}
