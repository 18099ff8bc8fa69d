// Package install implements the install command: resolve the
// Shelffile, populate the cache, and write the lockfile.
package install

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

var Cmd = cli.Command{
	Name:   "install",
	Usage:  "Resolve and download all declared cookbook dependencies",
	Action: Run,
	Flags: flags.WithGlobalFlags(flags.WithGroupFlags([]cli.Flag{
		flags.Workers,
	})),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}

	display.InProgress("Resolving cookbook dependencies...")
	defer display.ClearProgress()
	result, err := inst.Install()
	if err != nil {
		return err
	}
	display.ClearProgress()

	for _, cb := range result.Solution.Sorted() {
		fmt.Printf("Using %s (%s)\n", cb.Name, cb.Version)
	}
	if result.Reused {
		fmt.Println("Lockfile is up to date, nothing to install")
	}
	return nil
}
