package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/goplus/runme/internal/runner"
)

// recorder implements runner.Executor without starting processes. Commands
// whose formatted line in dir equals failOn exit with status 1.
type recorder struct {
	calls  []string
	failOn string
	dryRun bool
}

func (r *recorder) IsDryRun() bool { return r.dryRun }

func (r *recorder) Run(ctx context.Context, dir, name string, args ...string) error {
	line := fmt.Sprintf("[%s] %s", dir, strings.Join(append([]string{name}, args...), " "))
	r.calls = append(r.calls, line)
	if line == r.failOn {
		return &runner.ExitError{Dir: dir, Command: runner.Format(name, args...), Code: 1}
	}
	return nil
}
