// Package runner executes external programs one at a time, echoing each command
// line before it starts and stopping at the first failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"

	"github.com/goplus/runme/internal/logging"
)

// Executor runs a program in a directory. An empty dir means the current one.
type Executor interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// IsDryRun reports whether exec only echoes commands.
func IsDryRun(exec Executor) bool {
	dr, ok := exec.(interface{ IsDryRun() bool })
	return ok && dr.IsDryRun()
}

// ExitError reports a program that ran and exited with a non-zero status.
type ExitError struct {
	Dir     string
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	if e.Dir != "" {
		return fmt.Sprintf("%q (in %s) exited with status %d", e.Command, e.Dir, e.Code)
	}
	return fmt.Sprintf("%q exited with status %d", e.Command, e.Code)
}

// Runner is the Executor backed by os/exec.
type Runner struct {
	// Stdout and Stderr receive the child's output. Echoed command lines go
	// to Stdout as well.
	Stdout io.Writer
	Stderr io.Writer

	// Env, when non-nil, replaces the child's environment.
	Env []string

	// DryRun echoes commands without starting them.
	DryRun bool
}

var _ Executor = (*Runner)(nil)

// New returns a Runner wired to the process's stdout and stderr.
func New() *Runner {
	return &Runner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// IsDryRun reports whether r only echoes commands.
func (r *Runner) IsDryRun() bool {
	return r.DryRun
}

func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	line := Format(name, args...)
	stdout := r.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	if _, err := fmt.Fprintf(stdout, "> %s\n", line); err != nil {
		return eris.Wrap(err, "failed to echo command")
	}
	logging.From(ctx).Debug().
		Str("dir", dir).
		Bool("dry", r.DryRun).
		Msg(line)

	if r.DryRun {
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = r.Stderr
	cmd.Env = r.Env

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return eris.Wrapf(ctxErr, "interrupted while running %s", line)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code <= 0 {
			// killed by a signal
			code = 1
		}
		return &ExitError{Dir: dir, Command: line, Code: code}
	}
	return eris.Wrapf(err, "failed to start %s", line)
}

// Format renders a command line for display, quoting arguments only where a
// POSIX shell would need it.
func Format(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(name))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// quoteArg leaves "-DKEY=VALUE" style arguments bare: '=' only starts an
// assignment before the command name.
func quoteArg(s string) string {
	if plain := strings.ReplaceAll(s, "=", "_"); plain != "" {
		if q, err := syntax.Quote(plain, syntax.LangPOSIX); err == nil && q == plain {
			return s
		}
	}
	return quote(s)
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return strconv.Quote(s)
	}
	return q
}
