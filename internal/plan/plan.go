// Package plan turns a resolved settings map into the ordered list of
// side-effecting actions a run must perform. Planning is pure: actions are
// emitted in catalog declaration order so the same settings always produce
// the same plan.
package plan

import (
	"fmt"

	"macsetup/internal/catalog"
)

// Kind discriminates the Action variants.
type Kind string

const (
	ApplyPreference Kind = "apply-preference"
	SetComputerName Kind = "set-computer-name"
	InstallPackage  Kind = "install-package"
	DownloadApp     Kind = "download-app"
	AddDockItem     Kind = "add-dock-item"
	RemoveDockItem  Kind = "remove-dock-item"
	RestartService  Kind = "restart-service"
)

// Action is one planned side effect. Only the fields relevant to its Kind
// are set.
type Action struct {
	Kind  Kind
	Label string

	Domain  string // ApplyPreference
	PrefKey string // ApplyPreference
	Value   bool   // ApplyPreference

	Name     string                // SetComputerName, AddDockItem, RemoveDockItem
	Package  string                // InstallPackage
	Cask     bool                  // InstallPackage
	Download *catalog.DownloadSpec // DownloadApp

	Service string // RestartService

	// Triggers names the service that must restart for this action's
	// effect to become visible ("Finder" or "Dock"), if any. The executor
	// uses it to drop a restart whose triggering actions all failed.
	Triggers string
}

func (a Action) String() string {
	switch a.Kind {
	case ApplyPreference:
		return fmt.Sprintf("defaults %s %s=%v", a.Domain, a.PrefKey, a.Value)
	case SetComputerName:
		return fmt.Sprintf("set computer name to %q", a.Name)
	case InstallPackage:
		return fmt.Sprintf("install %s", a.Package)
	case DownloadApp:
		return fmt.Sprintf("download %s", a.Label)
	case AddDockItem:
		return fmt.Sprintf("add %q to Dock", a.Name)
	case RemoveDockItem:
		return fmt.Sprintf("remove %q from Dock", a.Name)
	case RestartService:
		return fmt.Sprintf("restart %s", a.Service)
	}
	return string(a.Kind)
}

// IsDockAction reports whether the action needs the dockutil backend.
func (a Action) IsDockAction() bool {
	return a.Kind == AddDockItem || a.Kind == RemoveDockItem
}

// Apps plans the macapps run: one install or download per catalog
// application whose setting is affirmative, in catalog order.
func Apps(values map[string]string) []Action {
	var actions []Action
	for _, app := range catalog.Apps() {
		if !catalog.IsAffirmative(values[app.Key]) {
			continue
		}
		if app.Download != nil {
			actions = append(actions, Action{Kind: DownloadApp, Label: app.Label, Download: app.Download})
			continue
		}
		actions = append(actions, Action{Kind: InstallPackage, Label: app.Label, Package: app.Package, Cask: app.Cask})
	}
	return actions
}

// Prefs plans the macprefs run: preference writes and dock edits in
// catalog order, then at most one restart per affected service. A restart
// is appended only when some earlier action makes it necessary, and always
// after every action it depends on.
func Prefs(values map[string]string) []Action {
	var actions []Action
	needFinder := false
	needDock := false

	for _, p := range catalog.Prefs() {
		switch {
		case p.Kind == catalog.Text && p.Key == "COMPUTER_NAME":
			if name := values[p.Key]; name != "" {
				actions = append(actions, Action{Kind: SetComputerName, Label: p.Label, Name: name})
			}
		case p.Kind == catalog.Flag:
			if !catalog.IsAffirmative(values[p.Key]) {
				continue
			}
			a := Action{
				Kind:    ApplyPreference,
				Label:   p.Label,
				Domain:  p.Domain,
				PrefKey: p.PrefKey,
				Value:   true,
			}
			switch {
			case p.Finder:
				a.Triggers = "Finder"
			case p.Dock:
				a.Triggers = "Dock"
			}
			actions = append(actions, a)
			needFinder = needFinder || p.Finder
			needDock = needDock || p.Dock
		case p.Kind == catalog.List:
			kind := AddDockItem
			if p.Key == "DOCK_REMOVE" {
				kind = RemoveDockItem
			}
			for _, item := range catalog.SplitList(values[p.Key]) {
				actions = append(actions, Action{Kind: kind, Label: p.Label, Name: item, Triggers: "Dock"})
				needDock = true
			}
		}
	}

	if needFinder {
		actions = append(actions, Action{Kind: RestartService, Label: "Restart Finder", Service: "Finder"})
	}
	if needDock {
		actions = append(actions, Action{Kind: RestartService, Label: "Restart Dock", Service: "Dock"})
	}
	return actions
}
