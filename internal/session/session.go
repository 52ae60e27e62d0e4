// Package session resolves the final value of every declared setting for
// one run. Values come from up to four sources in strict precedence:
// interactive answers, the persisted config file, and built-in defaults,
// gated by the run mode. All interactivity sits behind the Asker interface
// so the resolution logic is testable without a terminal.
package session

import (
	"errors"
	"fmt"

	"macsetup/internal/catalog"
	"macsetup/internal/cfgfile"
)

// Mode selects how the config file and prompts combine.
type Mode int

const (
	// Interactive prompts for every setting with built-in defaults and
	// never reads the config file.
	Interactive Mode = iota
	// UseConfig loads the config file (missing file is only a warning)
	// and prompts for every setting with loaded values as defaults.
	UseConfig
	// SkipPrompts loads the config file and asks nothing. A missing
	// config file is fatal: unattended runs must never silently fall
	// back to defaults.
	SkipPrompts
)

// Asker obtains one line of user input for a setting. Implementations
// return current when the user submits an empty line.
type Asker interface {
	Ask(label, current string) (string, error)
}

// Session drives the load/prompt/confirm/save sequence for one tool run.
type Session struct {
	Path     string // config file location
	Mode     Mode
	SaveOnly bool
	Settings []catalog.Setting
	Asker    Asker

	// Info and Warn receive user-facing progress lines. Either may be nil.
	Info func(format string, args ...any)
	Warn func(format string, args ...any)
}

// Resolve produces the final settings map for this run, applying the mode's
// precedence rules. It does not save; call ConfirmAndSave afterwards.
func (s *Session) Resolve() (map[string]string, error) {
	loaded, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(s.Settings))
	for _, set := range s.Settings {
		current, ok := loaded[set.Key]
		if !ok {
			current = set.Default
		}

		if s.Mode == SkipPrompts {
			values[set.Key] = current
			continue
		}

		answer, err := s.Asker.Ask(set.Label, current)
		if err != nil {
			return nil, fmt.Errorf("reading answer for %s: %w", set.Key, err)
		}
		values[set.Key] = answer
	}
	return values, nil
}

func (s *Session) loadConfig() (map[string]string, error) {
	if s.Mode == Interactive {
		return nil, nil
	}

	loaded, err := cfgfile.Load(s.Path)
	switch {
	case errors.Is(err, cfgfile.ErrNotFound):
		if s.Mode == SkipPrompts {
			return nil, fmt.Errorf("config file not found at %s (required with --skip-prompts)", s.Path)
		}
		s.warnf("no config file at %s, continuing with defaults", s.Path)
		return nil, nil
	case err != nil:
		return nil, err
	}

	s.infof("loaded configuration from %s", s.Path)
	for _, set := range s.Settings {
		if v, ok := loaded[set.Key]; ok {
			s.infof("  %s=%q", set.Key, v)
		}
	}
	return loaded, nil
}

// ConfirmAndSave persists the resolved values into this tool's owned block
// of the config file. In prompting modes the user is asked first; an empty
// answer means yes. In SkipPrompts mode there is nobody to ask: the values
// are saved only when the run is save-only (its entire point is updating
// the file) and left alone otherwise. Returns whether a save happened.
func (s *Session) ConfirmAndSave(values map[string]string) (bool, error) {
	if s.Mode == SkipPrompts && !s.SaveOnly {
		return false, nil
	}

	if s.Mode != SkipPrompts {
		answer, err := s.Asker.Ask("Save this configuration?", "y")
		if err != nil {
			return false, fmt.Errorf("reading save confirmation: %w", err)
		}
		if !catalog.IsAffirmative(answer) {
			return false, nil
		}
	}

	owned := catalog.Keys(s.Settings)
	if err := cfgfile.Save(s.Path, owned, values); err != nil {
		return false, fmt.Errorf("saving configuration: %w", err)
	}
	s.infof("configuration saved to %s", s.Path)
	return true, nil
}

func (s *Session) infof(format string, args ...any) {
	if s.Info != nil {
		s.Info(format, args...)
	}
}

func (s *Session) warnf(format string, args ...any) {
	if s.Warn != nil {
		s.Warn(format, args...)
	}
}
