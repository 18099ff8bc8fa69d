// Package list implements the list command: print the resolved
// cookbook set.
package list

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

var ShowJSON = "json"

var Cmd = cli.Command{
	Name:   "list",
	Usage:  "List all resolved cookbooks and their versions",
	Action: Run,
	Flags: flags.WithGlobalFlags(flags.WithGroupFlags([]cli.Flag{
		cli.BoolFlag{Name: ShowJSON, Usage: "print the list as JSON"},
	})),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}
	result, err := inst.Install()
	if err != nil {
		return err
	}

	if ctx.Bool(ShowJSON) {
		type entry struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		var entries []entry
		for _, cb := range result.Solution.Sorted() {
			entries = append(entries, entry{Name: cb.Name, Version: cb.Version.String()})
		}
		_, err := display.JSON(entries)
		return err
	}

	fmt.Println("Cookbooks installed by your Shelffile:")
	for _, cb := range result.Solution.Sorted() {
		fmt.Printf("  * %s (%s)\n", cb.Name, cb.Version)
	}
	return nil
}
