// Package setup translates parsed CLI flags into configured run
// options, shared by every command.
package setup

import (
	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/installer"
)

// SetContext applies the global flags to the display layer.
func SetContext(ctx *cli.Context) {
	display.SetDebug(ctx.Bool(flags.DebugFlagName))
	display.SetInteractive(!ctx.Bool(flags.NoAnsiFlagName))
}

// Options builds installer options from the command's flags. The
// update names, when any, come from the command's positional
// arguments.
func Options(ctx *cli.Context, update []string) installer.Options {
	return installer.Options{
		Dir:        ctx.String(flags.ShelffileFlagName),
		ConfigFile: ctx.String(flags.ConfigFlagName),
		Only:       ctx.StringSlice(flags.OnlyFlagName),
		Except:     ctx.StringSlice(flags.ExceptFlagName),
		Update:     update,
		Workers:    ctx.Int(flags.WorkersFlagName),
	}
}
