package logs

import (
	"log"
	"os"
	"strconv"
	"sync/atomic"
)

// VerboseEnv enables verbose logging when set to a true value
const VerboseEnv = "STORY_GRID_VERBOSE"

var verbose atomic.Bool

func init() {
	if v, err := strconv.ParseBool(os.Getenv(VerboseEnv)); err == nil {
		verbose.Store(v)
	}
}

// SetVerbose turns verbose logging on or off.
func SetVerbose(enabled bool) {
	verbose.Store(enabled)
}

// Verbose reports whether verbose logging is enabled.
func Verbose() bool {
	return verbose.Load()
}

// LogV prints a formatted log message only when verbose logging is enabled.
func LogV(format string, args ...interface{}) {
	if verbose.Load() {
		log.Printf(format, args...)
	}
}
