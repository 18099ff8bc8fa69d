// Package update implements the update command: discard the named
// lockfile pins (or all of them) and re-resolve.
package update

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/setup"
	"github.com/shelfhq/shelf-cli/installer"
	"github.com/shelfhq/shelf-cli/lockfile"
)

var Cmd = cli.Command{
	Name:      "update",
	Usage:     "Re-resolve named cookbooks (or all of them) past their lockfile pins",
	Action:    Run,
	ArgsUsage: "[cookbooks...]",
	Flags: flags.WithGlobalFlags(flags.WithGroupFlags([]cli.Flag{
		flags.Workers,
	})),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	setup.SetContext(ctx)

	update := []string(ctx.Args())
	opts := setup.Options(ctx, update)
	inst, err := installer.New(opts)
	if err != nil {
		return err
	}

	// With no names given, every pin floats: the whole lockfile is
	// recomputed from the declaration alone.
	if len(update) == 0 {
		if err := unpinAll(&opts); err != nil {
			return err
		}
		inst, err = installer.New(opts)
		if err != nil {
			return err
		}
	}

	display.InProgress("Updating cookbook dependencies...")
	defer display.ClearProgress()
	result, err := inst.Install()
	if err != nil {
		return err
	}
	display.ClearProgress()

	for _, cb := range result.Solution.Sorted() {
		fmt.Printf("Using %s (%s)\n", cb.Name, cb.Version)
	}
	return nil
}

func unpinAll(opts *installer.Options) error {
	probe, err := installer.New(*opts)
	if err != nil {
		return err
	}
	lock, err := probe.ReadLockfile()
	if err == lockfile.ErrNoLockfile {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range lock.Entries {
		opts.Update = append(opts.Update, entry.Name)
	}
	return nil
}
