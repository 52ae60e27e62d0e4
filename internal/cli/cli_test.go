package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"macsetup/internal/backend"
	"macsetup/internal/catalog"
	"macsetup/internal/execute"
	"macsetup/internal/history"
	"macsetup/internal/plan"
)

func testTool(t *testing.T, pkgs *backend.FakePackages, stdin string) (Tool, string) {
	t.Helper()
	settings := []catalog.Setting{
		{Key: "INSTALL_GIT", Label: "Install git?", Kind: catalog.Flag, Default: "y"},
		{Key: "INSTALL_JQ", Label: "Install jq?", Kind: catalog.Flag, Default: "y"},
	}
	return Tool{
		Name:     "macapps",
		Short:    "test tool",
		Settings: settings,
		BuildPlan: func(values map[string]string) []plan.Action {
			var actions []plan.Action
			for _, s := range settings {
				if catalog.IsAffirmative(values[s.Key]) {
					pkg := strings.ToLower(strings.TrimPrefix(s.Key, "INSTALL_"))
					actions = append(actions, plan.Action{Kind: plan.InstallPackage, Label: s.Label, Package: pkg})
				}
			}
			return actions
		},
		Deps:    execute.Deps{Packages: pkgs},
		Stdin:   strings.NewReader(stdin),
		DataDir: t.TempDir(),
	}, filepath.Join(t.TempDir(), "setup.cfg")
}

func TestSkipPromptsRunsFromConfig(t *testing.T) {
	pkgs := &backend.FakePackages{Present: true}
	tool, cfgPath := testTool(t, pkgs, "")
	if err := os.WriteFile(cfgPath, []byte("INSTALL_GIT=\"y\"\nINSTALL_JQ=\"n\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := NewRootCommand(tool)
	root.SetArgs([]string{"-s", "-f", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(pkgs.Installs) != 1 || pkgs.Installs[0] != "git" {
		t.Errorf("installs = %v, want [git]", pkgs.Installs)
	}

	// The run lands in history.
	store, err := history.Open(tool.DataDir)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer store.Close()
	runs, err := store.RecentRuns("macapps", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Total != 1 || runs[0].Succeeded != 1 {
		t.Errorf("history runs = %+v, want one run with 1/1", runs)
	}
}

func TestSkipPromptsWithoutConfigFails(t *testing.T) {
	pkgs := &backend.FakePackages{Present: true}
	tool, cfgPath := testTool(t, pkgs, "")

	root := NewRootCommand(tool)
	root.SetArgs([]string{"-s", "-f", cfgPath})
	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for missing config with --skip-prompts")
	}
	if !strings.Contains(err.Error(), "skip-prompts") {
		t.Errorf("error %q should mention skip-prompts", err)
	}
	if len(pkgs.Installs) != 0 {
		t.Errorf("no actions should run, got installs %v", pkgs.Installs)
	}
}

func TestSaveOnlyWritesConfigWithoutExecuting(t *testing.T) {
	pkgs := &backend.FakePackages{Present: true}
	// Answer "n" for git, accept default for jq, accept the save prompt.
	tool, cfgPath := testTool(t, pkgs, "n\n\n\n")

	root := NewRootCommand(tool)
	root.SetArgs([]string{"-o", "-f", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(pkgs.Installs) != 0 {
		t.Errorf("save-only must not execute, got installs %v", pkgs.Installs)
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `INSTALL_GIT="n"`) || !strings.Contains(content, `INSTALL_JQ="y"`) {
		t.Errorf("config missing expected values:\n%s", content)
	}
}

func TestInteractiveDeclineSaveStillExecutes(t *testing.T) {
	pkgs := &backend.FakePackages{Present: true}
	// Accept both defaults, decline the save prompt.
	tool, cfgPath := testTool(t, pkgs, "\n\nn\n")

	root := NewRootCommand(tool)
	root.SetArgs([]string{"-f", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Stat(cfgPath); !os.IsNotExist(err) {
		t.Errorf("config should not exist after declining save, stat err = %v", err)
	}
	if len(pkgs.Installs) != 2 {
		t.Errorf("installs = %v, want git and jq", pkgs.Installs)
	}
}

func TestUnknownFlagFails(t *testing.T) {
	pkgs := &backend.FakePackages{Present: true}
	tool, _ := testTool(t, pkgs, "")

	root := NewRootCommand(tool)
	root.SetArgs([]string{"--definitely-not-a-flag"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if len(pkgs.Installs) != 0 {
		t.Errorf("no actions should run, got installs %v", pkgs.Installs)
	}
}

func TestHistorySubcommandEmpty(t *testing.T) {
	tool, _ := testTool(t, &backend.FakePackages{}, "")

	root := NewRootCommand(tool)
	root.SetArgs([]string{"history"})
	if err := root.Execute(); err != nil {
		t.Fatalf("history on empty store: %v", err)
	}
}
