package main

import (
	"macsetup/internal/backend"
	"macsetup/internal/catalog"
	"macsetup/internal/cli"
	"macsetup/internal/execute"
	"macsetup/internal/plan"
)

func main() {
	cli.Main(cli.Tool{
		Name:      "macprefs",
		Short:     "Apply macOS preferences and Dock layout",
		Settings:  catalog.PrefSettings(),
		BuildPlan: plan.Prefs,
		Deps: execute.Deps{
			Packages: backend.Brew{},
			Prefs:    backend.Defaults{},
			Names:    backend.SCUtil{},
			Dock:     backend.Dockutil{},
			Services: backend.Killall{},
		},
	})
}
