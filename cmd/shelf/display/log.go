package display

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/apex/log"
)

var (
	file  *os.File
	level = log.InfoLevel
)

// SetInteractive turns the spinner and ANSI control characters on or
// off.
func SetInteractive(interactive bool) {
	// ANSI control characters are unreliable on Windows.
	if runtime.GOOS == "windows" {
		return
	}
	useSpinner = interactive
}

// SetDebug turns debug logging to STDERR on or off. The log file
// always receives debug-level entries.
func SetDebug(debug bool) {
	if debug {
		level = log.DebugLevel
	} else {
		level = log.InfoLevel
	}
}

// File returns the log file name.
func File() string {
	if file == nil {
		return ""
	}
	return file.Name()
}

// Handler multiplexes log entries, writing human-readable messages to
// STDERR and machine-readable entries to the log file.
func Handler(entry *log.Entry) error {
	if entry.Level >= level {
		ClearProgress()
		fmt.Fprintf(os.Stderr, "%s %s\n", entry.Level, entry.Message)
	}

	if file == nil {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, byte('\n'))
	_, err = file.Write(data)
	return err
}
