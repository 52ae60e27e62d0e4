// Package backend wraps the external tools a setup run drives: Homebrew,
// the defaults preference store, scutil, dockutil, and service restarts.
// Each capability is an interface; the production adapters shell out, and
// fakes record calls for tests.
package backend

import "context"

// PackageBackend installs and upgrades applications by package name.
type PackageBackend interface {
	// Available reports whether the package manager itself is installed.
	Available() bool
	// Installed reports whether the named package is already present.
	Installed(ctx context.Context, name string) bool
	Install(ctx context.Context, name string, cask bool) error
	Upgrade(ctx context.Context, name string, cask bool) error
	// InstallSelf bootstraps the package manager itself.
	InstallSelf(ctx context.Context) error
}

// PrefBackend writes a preference value under a defaults domain.
type PrefBackend interface {
	WriteBool(ctx context.Context, domain, key string, value bool) error
	WriteString(ctx context.Context, domain, key, value string) error
}

// NameBackend renames the computer.
type NameBackend interface {
	SetComputerName(ctx context.Context, name string) error
}

// DockBackend adds and removes Dock items by application name.
type DockBackend interface {
	Available() bool
	Add(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
}

// ServiceBackend restarts a user-visible OS service so applied preferences
// take effect.
type ServiceBackend interface {
	Restart(ctx context.Context, name string) error
}
