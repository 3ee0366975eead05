package config

import (
	"fmt"
	"os"
)

// Exitf prints a formatted line to stderr and exits with status 1. Deferred
// calls do not run, so commands only use it before acquiring resources or
// after releasing them.
func Exitf(format string, args ...any) {
	ExitWithCodef(1, format, args...)
}

// ExitWithCodef is Exitf with an explicit exit status.
func ExitWithCodef(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
