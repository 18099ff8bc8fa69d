package flags

import (
	"fmt"

	"github.com/urfave/cli"
)

func abbr(fullname string) string {
	return fmt.Sprintf("%s, %s", string(fullname[0]), fullname)
}

// Combine merges flag sets, deduplicating flags that appear in more
// than one. Two distinct flags with the same name are a programming
// error.
func Combine(sets ...[]cli.Flag) []cli.Flag {
	var combined []cli.Flag
	seen := make(map[string]cli.Flag)
	for _, set := range sets {
		for _, flag := range set {
			prev, ok := seen[flag.GetName()]
			if !ok {
				seen[flag.GetName()] = flag
				combined = append(combined, flag)
				continue
			}
			if prev != flag {
				panic(fmt.Sprintf("two different flags named %q", flag.GetName()))
			}
		}
	}
	return combined
}

func WithGlobalFlags(f []cli.Flag) []cli.Flag {
	return append(f, Global...)
}

var (
	Global            = []cli.Flag{Shelffile, Config, NoAnsi, Debug}
	ShelffileFlagName = "shelffile"
	Shelffile         = cli.StringFlag{Name: abbr(ShelffileFlagName), Usage: "directory containing the Shelffile (default: search upwards from '.')"}
	ConfigFlagName    = "config"
	Config            = cli.StringFlag{Name: abbr(ConfigFlagName), Usage: "path to config file (default: '.shelf.yml')"}
	NoAnsiFlagName    = "no-ansi"
	NoAnsi            = cli.BoolFlag{Name: NoAnsiFlagName, Usage: "do not use interactive mode (ANSI codes)"}
	DebugFlagName     = "debug"
	Debug             = cli.BoolFlag{Name: DebugFlagName, Usage: "print debug information to stderr"}
)

func WithGroupFlags(f []cli.Flag) []cli.Flag {
	return append(f, Groups...)
}

var (
	Groups         = []cli.Flag{Only, Except}
	OnlyFlagName   = "only"
	Only           = cli.StringSliceFlag{Name: OnlyFlagName, Usage: "only resolve dependencies in these groups"}
	ExceptFlagName = "except"
	Except         = cli.StringSliceFlag{Name: ExceptFlagName, Usage: "resolve all dependencies except those in these groups"}
)

var (
	WorkersFlagName = "workers"
	Workers         = cli.IntFlag{Name: WorkersFlagName, Usage: "maximum concurrent fetches during resolution"}
)
