package buildsys

import "context"

// BuildSystem captures the lifecycle shared by out-of-tree build helpers.
// Each step runs to completion before it returns; a non-nil error means the
// step failed and later steps must not run.
type BuildSystem interface {
	// Lifecycle. Extra args are appended to the tool's own arguments.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Test(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}
