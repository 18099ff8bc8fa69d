package main

import (
	"fmt"
	"os"

	"github.com/shelfhq/shelf-cli/cmd/shelf/app"
	"github.com/shelfhq/shelf-cli/cmd/shelf/display"
	"github.com/shelfhq/shelf-cli/errors"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		display.ClearProgress()
		fmt.Fprintln(os.Stderr, errors.Render(err))
		os.Exit(1)
	}
}
