// Package debug prints developer diagnostics to stderr when enabled with
// BIASCHECK_DEBUG or --verbose.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var (
	enabled atomic.Bool
	out     io.Writer = os.Stderr
)

func init() {
	if os.Getenv("BIASCHECK_DEBUG") != "" {
		enabled.Store(true)
	}
}

// SetVerbose turns debug output on or off.
func SetVerbose(v bool) { enabled.Store(v) }

// Logf prints when debug output is enabled.
func Logf(format string, args ...any) {
	if enabled.Load() {
		_, _ = fmt.Fprintf(out, format, args...)
	}
}
