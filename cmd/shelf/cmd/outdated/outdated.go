// Package outdated implements the outdated command: report locked
// cookbooks whose locations serve newer versions within the declared
// constraints.
package outdated

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
)

var Cmd = cli.Command{
	Name:   "outdated",
	Usage:  "Show locked cookbooks with newer versions available",
	Action: Run,
	Flags:  flags.WithGlobalFlags(nil),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	inst, err := installer.New(setup.Options(ctx, nil))
	if err != nil {
		return err
	}

	display.InProgress("Checking for newer cookbook versions...")
	defer display.ClearProgress()
	outdated, err := inst.Outdated()
	if err != nil {
		return err
	}
	display.ClearProgress()

	if len(outdated) == 0 {
		fmt.Println("All cookbooks up to date!")
		return nil
	}
	fmt.Println("The following cookbooks have newer versions:")
	for _, entry := range outdated {
		fmt.Printf("  * %s (locked %s, latest %s, constraint %s)\n",
			entry.Name, entry.Locked, entry.Latest, entry.Constraint)
	}
	return nil
}
