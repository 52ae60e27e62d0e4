package backend

import (
	"context"
	"fmt"
)

// The fakes below are in-memory backends recording every call. They back
// the executor and CLI tests; nothing in the production path uses them.

// FakePackages is a recording PackageBackend.
type FakePackages struct {
	Present      bool            // Available result
	SelfErr      error           // InstallSelf result
	AlreadyThere map[string]bool // Installed results
	FailInstall  map[string]bool // packages whose Install fails

	Installs []string
	Upgrades []string
}

func (f *FakePackages) Available() bool { return f.Present }

func (f *FakePackages) Installed(_ context.Context, name string) bool {
	return f.AlreadyThere[name]
}

func (f *FakePackages) Install(_ context.Context, name string, cask bool) error {
	f.Installs = append(f.Installs, name)
	if f.FailInstall[name] {
		return fmt.Errorf("install %s: simulated failure", name)
	}
	return nil
}

func (f *FakePackages) Upgrade(_ context.Context, name string, cask bool) error {
	f.Upgrades = append(f.Upgrades, name)
	return nil
}

func (f *FakePackages) InstallSelf(context.Context) error {
	if f.SelfErr != nil {
		return f.SelfErr
	}
	f.Present = true
	return nil
}

// FakePrefs is a recording PrefBackend.
type FakePrefs struct {
	Writes []string // "domain key=value"
	Err    error
}

func (f *FakePrefs) WriteBool(_ context.Context, domain, key string, value bool) error {
	f.Writes = append(f.Writes, fmt.Sprintf("%s %s=%v", domain, key, value))
	return f.Err
}

func (f *FakePrefs) WriteString(_ context.Context, domain, key, value string) error {
	f.Writes = append(f.Writes, fmt.Sprintf("%s %s=%s", domain, key, value))
	return f.Err
}

// FakeNames is a recording NameBackend.
type FakeNames struct {
	Names []string
	Err   error
}

func (f *FakeNames) SetComputerName(_ context.Context, name string) error {
	f.Names = append(f.Names, name)
	return f.Err
}

// FakeDock is a recording DockBackend.
type FakeDock struct {
	Present bool
	Added   []string
	Removed []string
	Err     error
}

func (f *FakeDock) Available() bool { return f.Present }

func (f *FakeDock) Add(_ context.Context, name string) error {
	f.Added = append(f.Added, name)
	return f.Err
}

func (f *FakeDock) Remove(_ context.Context, name string) error {
	f.Removed = append(f.Removed, name)
	return f.Err
}

// FakeServices is a recording ServiceBackend.
type FakeServices struct {
	Restarted []string
	Err       error
}

func (f *FakeServices) Restart(_ context.Context, name string) error {
	f.Restarted = append(f.Restarted, name)
	return f.Err
}
