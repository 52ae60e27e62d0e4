// Package catalog declares the fixed settings each tool knows about:
// the applications macapps can install and the preferences macprefs can
// toggle. Both catalogs are embedded YAML so their order is explicit; that
// order drives prompting, display, and the saved config block.
package catalog

import (
	"fmt"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

// Kind classifies how a setting's value is interpreted at consumption time.
type Kind string

const (
	// Flag is a yes/no setting. The raw value stays a string; only
	// IsAffirmative decides what counts as "yes".
	Flag Kind = "flag"
	// Text is free-form text, e.g. the computer name.
	Text Kind = "text"
	// List is a comma-separated list, e.g. dock item names.
	List Kind = "list"
)

// Setting is one named configuration value a tool prompts for and persists.
type Setting struct {
	Key     string
	Label   string
	Kind    Kind
	Default string
}

// DownloadSpec describes a direct-download install for an application that
// is not available through the package manager.
type DownloadSpec struct {
	Page   string `yaml:"page"`
	Suffix string `yaml:"suffix"`
}

// AppEntry is one application in the macapps catalog.
type AppEntry struct {
	Key      string        `yaml:"key"`
	Label    string        `yaml:"label"`
	Package  string        `yaml:"package"`
	Cask     bool          `yaml:"cask"`
	Download *DownloadSpec `yaml:"download"`
}

// Setting returns the prompt/persistence view of the entry. Catalog
// applications are opt-out: they default to "y".
func (a AppEntry) Setting() Setting {
	return Setting{Key: a.Key, Label: a.Label, Kind: Flag, Default: "y"}
}

// PrefEntry is one preference in the macprefs catalog.
type PrefEntry struct {
	Key     string `yaml:"key"`
	Label   string `yaml:"label"`
	Kind    Kind   `yaml:"kind"`
	Default string `yaml:"default"`

	// For flag preferences: the defaults domain and key to write.
	Domain  string `yaml:"domain"`
	PrefKey string `yaml:"pref_key"`

	// Which OS service must restart for the change to become visible.
	Finder bool `yaml:"finder"`
	Dock   bool `yaml:"dock"`
}

// Setting returns the prompt/persistence view of the entry. Preference
// toggles are opt-in: flags default to "" (not requested).
func (p PrefEntry) Setting() Setting {
	return Setting{Key: p.Key, Label: p.Label, Kind: p.Kind, Default: p.Default}
}

//go:embed apps.yaml
var appsYAML []byte

//go:embed prefs.yaml
var prefsYAML []byte

var (
	apps  = mustParse[AppEntry]("apps.yaml", appsYAML)
	prefs = mustParse[PrefEntry]("prefs.yaml", prefsYAML)
)

// Apps returns the macapps catalog in declaration order.
func Apps() []AppEntry { return apps }

// Prefs returns the macprefs catalog in declaration order.
func Prefs() []PrefEntry { return prefs }

// AppSettings returns the Setting view of the macapps catalog, in order.
func AppSettings() []Setting {
	out := make([]Setting, len(apps))
	for i, a := range apps {
		out[i] = a.Setting()
	}
	return out
}

// PrefSettings returns the Setting view of the macprefs catalog, in order.
func PrefSettings() []Setting {
	out := make([]Setting, len(prefs))
	for i, p := range prefs {
		out[i] = p.Setting()
	}
	return out
}

// Keys returns the config-file keys of settings, in order. These are the
// keys a tool owns when saving.
func Keys(settings []Setting) []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key
	}
	return keys
}

func mustParse[T any](name string, data []byte) []T {
	var entries []T
	if err := yaml.Unmarshal(data, &entries); err != nil {
		panic(fmt.Sprintf("parsing embedded %s: %v", name, err))
	}
	if len(entries) == 0 {
		panic(fmt.Sprintf("embedded %s is empty", name))
	}
	return entries
}

// IsAffirmative reports whether a raw flag value counts as "yes". Only the
// single letter y (either case) is affirmative; anything else, including
// the empty string and unrecognized words, is negative. Raw values are
// never normalized in place — the file keeps whatever the user typed.
func IsAffirmative(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "y")
}

// SplitList splits a comma-separated list value, trimming whitespace and
// dropping empty elements while preserving order.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
