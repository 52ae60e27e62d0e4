package backend

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Defaults writes preferences through the defaults CLI.
type Defaults struct{}

func (Defaults) WriteBool(ctx context.Context, domain, key string, value bool) error {
	arg := "false"
	if value {
		arg = "true"
	}
	return run(ctx, "defaults", "write", domain, key, "-bool", arg)
}

func (Defaults) WriteString(ctx context.Context, domain, key, value string) error {
	return run(ctx, "defaults", "write", domain, key, "-string", value)
}

// SCUtil sets the computer name through scutil. The local host name gets a
// dash-separated form since it may not contain spaces.
type SCUtil struct{}

func (SCUtil) SetComputerName(ctx context.Context, name string) error {
	hostSafe := strings.ReplaceAll(name, " ", "-")
	for _, pair := range [][2]string{
		{"ComputerName", name},
		{"HostName", hostSafe},
		{"LocalHostName", hostSafe},
	} {
		if err := run(ctx, "scutil", "--set", pair[0], pair[1]); err != nil {
			return fmt.Errorf("setting %s: %w", pair[0], err)
		}
	}
	return nil
}

// Dockutil edits the Dock through the dockutil CLI. Edits use --no-restart;
// the plan carries an explicit Dock restart instead.
type Dockutil struct{}

func (Dockutil) Available() bool {
	_, err := exec.LookPath("dockutil")
	return err == nil
}

func (Dockutil) Add(ctx context.Context, name string) error {
	app := fmt.Sprintf("/Applications/%s.app", name)
	return run(ctx, "dockutil", "--add", app, "--no-restart")
}

func (Dockutil) Remove(ctx context.Context, name string) error {
	return run(ctx, "dockutil", "--remove", name, "--no-restart")
}

// Killall restarts Dock/Finder by killing them; launchd brings them back.
type Killall struct{}

func (Killall) Restart(ctx context.Context, name string) error {
	return run(ctx, "killall", name)
}

func run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		s := strings.TrimSpace(string(out))
		if s != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, s)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
