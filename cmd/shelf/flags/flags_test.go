package flags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli"

	"github.com/shelfhq/shelf-cli/cmd/shelf/flags"
)

func TestCombineDeduplicatesSharedFlags(t *testing.T) {
	combined := flags.Combine(
		flags.Groups,
		flags.WithGroupFlags([]cli.Flag{flags.Workers}),
	)

	names := make(map[string]int)
	for _, flag := range combined {
		names[flag.GetName()]++
	}
	assert.Equal(t, 1, names[flags.OnlyFlagName])
	assert.Equal(t, 1, names[flags.ExceptFlagName])
	assert.Equal(t, 1, names[flags.WorkersFlagName])
}

func TestCombinePanicsOnConflictingFlags(t *testing.T) {
	assert.Panics(t, func() {
		flags.Combine(
			[]cli.Flag{cli.BoolFlag{Name: "force", Usage: "one"}},
			[]cli.Flag{cli.BoolFlag{Name: "force", Usage: "another"}},
		)
	})
}

func TestGlobalShortAliases(t *testing.T) {
	// The primary name carries a single-letter alias, urfave style.
	assert.Equal(t, "s, shelffile", flags.Shelffile.GetName())
	assert.Equal(t, "c, config", flags.Config.GetName())
}
