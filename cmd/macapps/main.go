package main

import (
	"macsetup/internal/backend"
	"macsetup/internal/catalog"
	"macsetup/internal/cli"
	"macsetup/internal/download"
	"macsetup/internal/execute"
	"macsetup/internal/plan"
)

func main() {
	cli.Main(cli.Tool{
		Name:      "macapps",
		Short:     "Install a curated set of macOS applications",
		Settings:  catalog.AppSettings(),
		BuildPlan: plan.Apps,
		Deps: execute.Deps{
			Packages:   backend.Brew{},
			Downloader: download.New(),
		},
	})
}
