package internal

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/runme/internal/runner"
	"github.com/goplus/runme/internal/variant"
)

// Exit codes other than a failing tool's own status.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitEnvError    = 3
)

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// envError reports failed doctor checks.
type envError struct {
	failed int
}

func (e *envError) Error() string {
	if e.failed == 1 {
		return "1 check failed"
	}
	return fmt.Sprintf("%d checks failed", e.failed)
}

func exitCode(err error) int {
	var (
		exitErr  *runner.ExitError
		cfgErr   *variant.ConfigError
		usageErr *usageError
		envErr   *envError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &cfgErr), errors.As(err, &usageErr):
		return ExitConfigError
	case errors.As(err, &envErr):
		return ExitEnvError
	}
	return ExitFailure
}
