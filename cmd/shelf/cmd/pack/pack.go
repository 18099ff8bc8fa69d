// Package pack implements the package command: vendor everything into
// a cookbooks/ tree and archive it as a gzipped tarball.
package pack

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

const DefaultOutput = "cookbooks.tar.gz"

var Cmd = cli.Command{
	Name:      "package",
	Usage:     "Vendor and archive all cookbooks as a tarball",
	Action:    Run,
	ArgsUsage: "[output]",
	Flags:     flags.WithGlobalFlags(flags.WithGroupFlags(nil)),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	out := ctx.Args().First()
	if out == "" {
		out = DefaultOutput
	}

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}

	display.InProgress("Packaging cookbooks...")
	defer display.ClearProgress()
	result, err := inst.Package(out)
	if err != nil {
		return err
	}
	display.ClearProgress()

	fmt.Printf("Packaged %d cookbooks into %s\n", len(result.Solution.Cookbooks), out)
	return nil
}
