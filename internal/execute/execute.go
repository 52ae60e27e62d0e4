// Package execute runs a plan strictly in order, collecting a per-action
// outcome instead of aborting on failure: one broken install must not block
// unrelated actions. Only missing mandatory infrastructure (Homebrew,
// dockutil) curtails the actions that depend on it.
package execute

import (
	"context"
	"fmt"

	"macsetup/internal/backend"
	"macsetup/internal/catalog"
	"macsetup/internal/plan"
)

// Downloader installs a non-catalog application by direct download.
type Downloader interface {
	Install(ctx context.Context, spec catalog.DownloadSpec, label string) error
}

// Deps bundles the external collaborators a run drives. Any field a plan
// does not touch may be nil.
type Deps struct {
	Packages   backend.PackageBackend
	Prefs      backend.PrefBackend
	Names      backend.NameBackend
	Dock       backend.DockBackend
	Services   backend.ServiceBackend
	Downloader Downloader
}

// Outcome records what happened to one planned action.
type Outcome struct {
	Action plan.Action
	OK     bool
	Detail string
}

// Run executes every action in order and returns one outcome per action.
// report, if non-nil, is called with each outcome as it happens so failures
// surface inline rather than only in the final summary.
func Run(ctx context.Context, actions []plan.Action, deps Deps, report func(Outcome)) []Outcome {
	e := &executor{deps: deps, applied: make(map[string]bool)}
	outcomes := make([]Outcome, 0, len(actions))
	for _, a := range actions {
		o := e.run(ctx, a)
		outcomes = append(outcomes, o)
		if report != nil {
			report(o)
		}
		if o.OK && a.Triggers != "" {
			e.applied[a.Triggers] = true
		}
	}
	return outcomes
}

type executor struct {
	deps Deps

	// applied marks services with at least one successfully applied
	// action that needs them restarted.
	applied map[string]bool

	brewChecked bool
	brewOK      bool
	dockChecked bool
	dockOK      bool
}

func (e *executor) run(ctx context.Context, a plan.Action) Outcome {
	switch a.Kind {
	case plan.ApplyPreference:
		if err := e.deps.Prefs.WriteBool(ctx, a.Domain, a.PrefKey, a.Value); err != nil {
			return fail(a, err)
		}
		return ok(a, fmt.Sprintf("%s %s set", a.Domain, a.PrefKey))

	case plan.SetComputerName:
		if err := e.deps.Names.SetComputerName(ctx, a.Name); err != nil {
			return fail(a, err)
		}
		return ok(a, fmt.Sprintf("computer name is now %q", a.Name))

	case plan.InstallPackage:
		return e.installPackage(ctx, a)

	case plan.DownloadApp:
		if err := e.deps.Downloader.Install(ctx, *a.Download, a.Label); err != nil {
			return fail(a, err)
		}
		return ok(a, "downloaded and installed")

	case plan.AddDockItem, plan.RemoveDockItem:
		return e.dockEdit(ctx, a)

	case plan.RestartService:
		if !e.applied[a.Service] {
			return Outcome{Action: a, OK: false, Detail: "nothing applied needs this restart; skipped"}
		}
		if err := e.deps.Services.Restart(ctx, a.Service); err != nil {
			return fail(a, err)
		}
		return ok(a, a.Service+" restarted")
	}
	return fail(a, fmt.Errorf("unknown action kind %q", a.Kind))
}

func (e *executor) installPackage(ctx context.Context, a plan.Action) Outcome {
	if !e.ensureBrew(ctx) {
		return Outcome{Action: a, OK: false, Detail: "Homebrew unavailable and could not be installed; skipped"}
	}
	if e.deps.Packages.Installed(ctx, a.Package) {
		if err := e.deps.Packages.Upgrade(ctx, a.Package, a.Cask); err != nil {
			return fail(a, err)
		}
		return ok(a, "already installed, upgraded")
	}
	if err := e.deps.Packages.Install(ctx, a.Package, a.Cask); err != nil {
		return fail(a, err)
	}
	return ok(a, "installed")
}

func (e *executor) dockEdit(ctx context.Context, a plan.Action) Outcome {
	if !e.ensureDockutil(ctx) {
		return Outcome{Action: a, OK: false, Detail: "dockutil unavailable and could not be installed; skipped"}
	}
	var err error
	if a.Kind == plan.AddDockItem {
		err = e.deps.Dock.Add(ctx, a.Name)
	} else {
		err = e.deps.Dock.Remove(ctx, a.Name)
	}
	if err != nil {
		return fail(a, err)
	}
	return ok(a, "Dock updated")
}

// ensureBrew checks for Homebrew once per run and bootstraps it if absent.
func (e *executor) ensureBrew(ctx context.Context) bool {
	if e.brewChecked {
		return e.brewOK
	}
	e.brewChecked = true
	if e.deps.Packages.Available() {
		e.brewOK = true
		return true
	}
	e.brewOK = e.deps.Packages.InstallSelf(ctx) == nil && e.deps.Packages.Available()
	return e.brewOK
}

// ensureDockutil checks for dockutil once per run, installing it through
// the package manager on first need.
func (e *executor) ensureDockutil(ctx context.Context) bool {
	if e.dockChecked {
		return e.dockOK
	}
	e.dockChecked = true
	if e.deps.Dock.Available() {
		e.dockOK = true
		return true
	}
	if !e.ensureBrew(ctx) {
		return false
	}
	e.dockOK = e.deps.Packages.Install(ctx, "dockutil", false) == nil && e.deps.Dock.Available()
	return e.dockOK
}

func ok(a plan.Action, detail string) Outcome {
	return Outcome{Action: a, OK: true, Detail: detail}
}

func fail(a plan.Action, err error) Outcome {
	return Outcome{Action: a, OK: false, Detail: err.Error()}
}
