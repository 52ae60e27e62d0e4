package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

const brewInstallURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// Brew is the Homebrew adapter for PackageBackend.
type Brew struct{}

func (Brew) Available() bool {
	_, err := exec.LookPath("brew")
	return err == nil
}

func (Brew) Installed(ctx context.Context, name string) bool {
	return exec.CommandContext(ctx, "brew", "list", "--versions", name).Run() == nil
}

func (Brew) Install(ctx context.Context, name string, cask bool) error {
	args := []string{"install"}
	if cask {
		args = append(args, "--cask")
	}
	args = append(args, name)
	return runVisible(ctx, "brew", args...)
}

func (Brew) Upgrade(ctx context.Context, name string, cask bool) error {
	args := []string{"upgrade"}
	if cask {
		args = append(args, "--cask")
	}
	args = append(args, name)
	return runVisible(ctx, "brew", args...)
}

// InstallSelf runs the official Homebrew install script non-interactively.
func (Brew) InstallSelf(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "/bin/bash", "-c",
		fmt.Sprintf(`/bin/bash -c "$(curl -fsSL %s)"`, brewInstallURL))
	cmd.Env = append(os.Environ(), "NONINTERACTIVE=1")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// runVisible runs a command with its output streamed to stderr so long
// installs show progress.
func runVisible(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
