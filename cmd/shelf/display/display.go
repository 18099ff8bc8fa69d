// Package display implements functions for displaying output to users.
package display

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/briandowns/spinner"
)

func init() {
	s = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = os.Stderr

	f, err := ioutil.TempFile("", "shelf-log-")
	if err != nil {
		log.WithError(err).Warn("could not open log file")
	}
	file = f

	// The logging package stays at debug so the handler still sees the
	// entries it writes to the log file; stderr filtering happens in
	// the handler itself.
	log.SetLevel(log.DebugLevel)
	log.SetHandler(log.HandlerFunc(Handler))
}

// JSON is a convenience function for printing JSON to STDOUT.
func JSON(data interface{}) (int, error) {
	msg, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	return fmt.Println(string(msg))
}
