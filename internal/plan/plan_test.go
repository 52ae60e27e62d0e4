package plan

import (
	"testing"
)

func countKind(actions []Action, kind Kind) int {
	n := 0
	for _, a := range actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func restartIndex(t *testing.T, actions []Action, service string) int {
	t.Helper()
	for i, a := range actions {
		if a.Kind == RestartService && a.Service == service {
			return i
		}
	}
	t.Fatalf("no RestartService(%q) in plan: %v", service, actions)
	return -1
}

func TestAppsPlanOnlyAffirmative(t *testing.T) {
	values := map[string]string{
		"INSTALL_CHROME":  "y",
		"INSTALL_FIREFOX": "n",
		"INSTALL_ITERM2":  "maybe", // unrecognized is negative
		"INSTALL_GIT":     "Y",
	}
	actions := Apps(values)

	var pkgs []string
	for _, a := range actions {
		if a.Kind == InstallPackage {
			pkgs = append(pkgs, a.Package)
		}
	}
	want := []string{"google-chrome", "git"}
	if len(pkgs) != len(want) {
		t.Fatalf("planned packages = %v, want %v", pkgs, want)
	}
	for i := range want {
		if pkgs[i] != want[i] {
			t.Errorf("package %d = %q, want %q (catalog order)", i, pkgs[i], want[i])
		}
	}
}

func TestAppsPlanDownloadVariant(t *testing.T) {
	actions := Apps(map[string]string{"INSTALL_APPCLEANER": "y"})
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Kind != DownloadApp || actions[0].Download == nil {
		t.Errorf("expected a DownloadApp action with a download spec, got %+v", actions[0])
	}
}

func TestAppsPlanEmptySettings(t *testing.T) {
	if actions := Apps(map[string]string{}); len(actions) != 0 {
		t.Errorf("empty settings planned %d actions: %v", len(actions), actions)
	}
}

func TestPrefsPlanDockRestartDedup(t *testing.T) {
	// Three dock-affecting actions: autohide plus two added items.
	values := map[string]string{
		"DOCK_AUTOHIDE": "y",
		"DOCK_ADD":      "Safari, Mail",
	}
	actions := Prefs(values)

	if n := countKind(actions, RestartService); n != 1 {
		t.Fatalf("plan has %d restarts, want 1: %v", n, actions)
	}
	dockRestart := restartIndex(t, actions, "Dock")
	for i, a := range actions {
		if a.Kind == ApplyPreference || a.IsDockAction() {
			if i > dockRestart {
				t.Errorf("action %d (%s) positioned after its restart", i, a)
			}
		}
	}
}

func TestPrefsPlanFinderAndDockRestarts(t *testing.T) {
	values := map[string]string{
		"SHOW_HIDDEN_FILES": "y",
		"DOCK_AUTOHIDE":     "y",
	}
	actions := Prefs(values)

	finder := restartIndex(t, actions, "Finder")
	dock := restartIndex(t, actions, "Dock")
	if finder == dock {
		t.Fatal("expected two distinct restart actions")
	}
	for i, a := range actions {
		if a.Kind == ApplyPreference && (i > finder || i > dock) {
			t.Errorf("preference action %d after a restart", i)
		}
	}
}

func TestPrefsPlanNoRestartWithoutTriggers(t *testing.T) {
	// DSDontWriteNetworkStores needs no service restart.
	values := map[string]string{"DISABLE_DS_STORE_ON_NETWORK": "y"}
	actions := Prefs(values)

	if n := countKind(actions, RestartService); n != 0 {
		t.Errorf("plan has %d restarts, want 0: %v", n, actions)
	}
	if n := countKind(actions, ApplyPreference); n != 1 {
		t.Errorf("plan has %d preference writes, want 1", n)
	}
}

func TestPrefsPlanComputerName(t *testing.T) {
	actions := Prefs(map[string]string{"COMPUTER_NAME": "workbench"})
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1: %v", len(actions), actions)
	}
	if actions[0].Kind != SetComputerName || actions[0].Name != "workbench" {
		t.Errorf("unexpected action: %+v", actions[0])
	}

	if actions := Prefs(map[string]string{"COMPUTER_NAME": ""}); len(actions) != 0 {
		t.Errorf("empty computer name planned %v", actions)
	}
}

func TestPrefsPlanListParsing(t *testing.T) {
	values := map[string]string{"DOCK_ADD": "Safari, Mail ,, Photos", "DOCK_REMOVE": " News "}
	actions := Prefs(values)

	var added, removed []string
	for _, a := range actions {
		switch a.Kind {
		case AddDockItem:
			added = append(added, a.Name)
		case RemoveDockItem:
			removed = append(removed, a.Name)
		}
	}

	wantAdded := []string{"Safari", "Mail", "Photos"}
	if len(added) != len(wantAdded) {
		t.Fatalf("added = %v, want %v", added, wantAdded)
	}
	for i := range wantAdded {
		if added[i] != wantAdded[i] {
			t.Errorf("added[%d] = %q, want %q", i, added[i], wantAdded[i])
		}
	}
	if len(removed) != 1 || removed[0] != "News" {
		t.Errorf("removed = %v, want [News]", removed)
	}
}

func TestPrefsPlanUnrecognizedFlagIsNegative(t *testing.T) {
	values := map[string]string{"SHOW_HIDDEN_FILES": "maybe"}
	if actions := Prefs(values); len(actions) != 0 {
		t.Errorf("unrecognized flag value planned %v", actions)
	}
}
