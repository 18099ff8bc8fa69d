// Package upload implements the upload command: resolve and publish
// every cookbook to the configured Chef server.
package upload

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

var Cmd = cli.Command{
	Name:   "upload",
	Usage:  "Upload all resolved cookbooks to the configured Chef server",
	Action: Run,
	Flags:  flags.WithGlobalFlags(flags.WithGroupFlags(nil)),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}

	display.InProgress("Uploading cookbooks...")
	defer display.ClearProgress()
	result, err := inst.Upload()
	if err != nil {
		return err
	}
	display.ClearProgress()

	for _, cb := range result.Solution.Sorted() {
		fmt.Printf("Uploaded %s (%s)\n", cb.Name, cb.Version)
	}
	return nil
}
