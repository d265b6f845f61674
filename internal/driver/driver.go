// Package driver runs configure, build and test for every variant in order,
// stopping at the first failure.
package driver

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/goplus/runme/internal/layout"
	"github.com/goplus/runme/internal/logging"
	"github.com/goplus/runme/internal/runner"
	"github.com/goplus/runme/internal/variant"
	"github.com/goplus/runme/pkgs/buildsys"
	"github.com/goplus/runme/pkgs/buildsys/cmake"
)

// Phase is one step of a variant's lifecycle.
type Phase string

const (
	Configure Phase = "configure"
	Build     Phase = "build"
	Test      Phase = "test"
)

// Phases lists the lifecycle steps in execution order. Every variant finishes
// a phase before any variant starts the next one.
var Phases = []Phase{Configure, Build, Test}

func (p Phase) run(ctx context.Context, sys buildsys.BuildSystem) error {
	switch p {
	case Configure:
		return sys.Configure(ctx)
	case Build:
		return sys.Build(ctx)
	case Test:
		return sys.Test(ctx)
	}
	return eris.Errorf("unknown phase %q", p)
}

// Target pairs a variant with the build system that drives its directory.
type Target struct {
	Variant variant.Variant
	CMake   *cmake.CMake
}

// Driver runs a variant set.
type Driver struct {
	set  *variant.Set
	exec runner.Executor
}

// New returns a Driver for set. exec starts every external command.
func New(set *variant.Set, exec runner.Executor) *Driver {
	return &Driver{set: set, exec: exec}
}

// Targets returns one configured CMake per variant, in declaration order.
func (d *Driver) Targets() []Target {
	targets := make([]Target, 0, len(d.set.Variants))
	for _, v := range d.set.Variants {
		c := cmake.New(d.exec, d.set.Source, d.set.Dir(v)).
			Generator(d.set.Generator).
			TestCommand(d.set.TestCommand...)
		for _, def := range v.Defines {
			key, value, _ := strings.Cut(def, "=")
			c.Define(key, value)
		}
		if v.Toolchain != "" {
			c.Toolchain(v.Toolchain)
		}
		targets = append(targets, Target{Variant: v, CMake: c})
	}
	return targets
}

// Prepare creates the output root and every variant directory. Nothing is
// created when the executor is in dry-run mode.
func (d *Driver) Prepare(ctx context.Context) error {
	log := logging.From(ctx)
	dirs := d.set.Dirs()
	if runner.IsDryRun(d.exec) {
		log.Info().Str("root", d.set.Root).Msgf("would prepare %d directories", len(dirs)+1)
		return nil
	}
	log.Debug().Str("root", d.set.Root).Strs("dirs", dirs).Msg("preparing output directories")
	return eris.Wrap(layout.Prepare(d.set.Root, dirs...), "failed to prepare output directories")
}

// Run prepares the directories and then runs every phase for every variant.
// The first error aborts the run and is returned wrapped with the failing
// variant and phase.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.set.Validate(); err != nil {
		return &variant.ConfigError{Err: err}
	}
	if err := d.Prepare(ctx); err != nil {
		return err
	}

	log := logging.From(ctx)
	targets := d.Targets()
	for _, phase := range Phases {
		for _, t := range targets {
			log.Info().Str("variant", t.Variant.Name).Msgf("%s in %s", phase, t.CMake.OutputDir())
			if err := phase.run(ctx, t.CMake); err != nil {
				return eris.Wrapf(err, "%s failed for variant %s", phase, t.Variant.Name)
			}
		}
	}
	log.Info().Int("variants", len(targets)).Msg("all variants configured, built and tested")
	return nil
}
