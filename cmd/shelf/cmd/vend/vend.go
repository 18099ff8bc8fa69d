// Package vend implements the vendor command: resolve and copy every
// cookbook into a local directory, honoring chefignore.
package vend

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

const DefaultDestination = "cookbooks"

var Cmd = cli.Command{
	Name:      "vendor",
	Usage:     "Resolve and copy all cookbooks into a directory",
	Action:    Run,
	ArgsUsage: "[destination]",
	Flags:     flags.WithGlobalFlags(flags.WithGroupFlags(nil)),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	destination := ctx.Args().First()
	if destination == "" {
		destination = DefaultDestination
	}

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}

	display.InProgress("Vendoring cookbooks...")
	defer display.ClearProgress()
	result, err := inst.Vendor(destination)
	if err != nil {
		return err
	}
	display.ClearProgress()

	fmt.Printf("Vendored %d cookbooks into %s\n", len(result.Solution.Cookbooks), destination)
	return nil
}
