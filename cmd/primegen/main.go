// Command primegen writes every prime below an arbitrary-precision limit
// using a concurrent segmented sieve. It also serves the sieve over HTTP,
// offers an interactive big-number REPL and calibrates the worker count.
package main

import (
	"context"
	"os"

	"github.com/agbru/primegen/internal/app"
	apperrors "github.com/agbru/primegen/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}
	os.Exit(application.Run(context.Background(), os.Stdout))
}
