// Package app assembles the shelf CLI application.
package app

import (
	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/install"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/list"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/outdated"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/pack"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/update"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/upload"
	"github.com/shelfhq/shelf-cli/cmd/shelf/cmd/vend"
	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
	"github.com/shelfhq/shelf-cli/cmd/shelf/version"
)

func New() *cli.App {
	return &cli.App{
		Name:                 "shelf",
		Usage:                "Resolve, cache, and ship Chef cookbook dependencies",
		Version:              version.String(),
		Action:               install.Run,
		EnableBashCompletion: true,
		Flags: flags.Combine(
			install.Cmd.Flags,
			flags.WithGlobalFlags(nil),
		),
		Commands: []cli.Command{
			install.Cmd,
			update.Cmd,
			vend.Cmd,
			upload.Cmd,
			list.Cmd,
			outdated.Cmd,
			pack.Cmd,
		},
	}
}
