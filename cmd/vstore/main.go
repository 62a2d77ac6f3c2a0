package main

import (
	"fmt"
	"os"

	"github.com/vango-dev/vstore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	a := newApp()
	if err := newRootCmd(a).Execute(); err != nil {
		errors.PrintError(err, a.errorFormat)
		os.Exit(1)
	}
}

// success prints a success message.
func success(a *app, format string, args ...any) {
	fmt.Fprintf(a.errOut, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(a *app, format string, args ...any) {
	fmt.Fprintf(a.errOut, "  %s\n", fmt.Sprintf(format, args...))
}
