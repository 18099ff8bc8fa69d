package errors

import (
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
)

const width = 78

// Render formats an *Error for terminal display, including its
// troubleshooting section when one is set. Non-*Error values render as
// their plain message.
func Render(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}
	out := color.HiRedString("ERROR: ") + wordwrap.WrapString(e.Error(), width)
	if e.Troubleshooting != "" {
		out += "\n\n" + color.HiYellowString("TROUBLESHOOTING:") + `
` + wordwrap.WrapString(e.Troubleshooting, width)
	}
	return out
}

var LockWarningMessage = wordwrap.WrapString(
	"The resolved cookbook set was installed, but the lockfile could not be written. "+
		"The next run will re-resolve from the Shelffile. "+
		"Check that the lockfile path is writable.", width)
