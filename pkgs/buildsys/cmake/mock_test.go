package cmake

import (
	"context"
	"strings"
)

// call is one recorded invocation.
type call struct {
	dir  string
	name string
	args []string
}

func (c call) String() string {
	return c.dir + ": " + strings.Join(append([]string{c.name}, c.args...), " ")
}

// recorder implements runner.Executor without starting processes.
type recorder struct {
	calls []call
	err   error
}

func (r *recorder) Run(ctx context.Context, dir, name string, args ...string) error {
	r.calls = append(r.calls, call{dir: dir, name: name, args: append([]string(nil), args...)})
	return r.err
}
