// Package cmake drives an out-of-tree CMake build: configure, build and run
// the test target.
package cmake

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/goplus/runme/internal/env"
	"github.com/goplus/runme/internal/runner"
	"github.com/goplus/runme/pkgs/buildsys"
)

type define struct {
	key   string
	value string
}

// CMake drives one build directory.
type CMake struct {
	exec      runner.Executor
	sourceDir string
	buildDir  string
	generator string
	toolchain string
	defines   []define
	testCmd   []string
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a CMake that configures sourceDir into buildDir and runs every
// command through exec. Both paths are relative to the working directory or
// absolute.
func New(exec runner.Executor, sourceDir, buildDir string) *CMake {
	return &CMake{
		exec:      exec,
		sourceDir: sourceDir,
		buildDir:  buildDir,
		testCmd:   []string{env.Ninja, "test"},
	}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// Toolchain sets CMAKE_TOOLCHAIN_FILE. A relative path is taken relative to
// the source directory.
func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

// Define adds -D<key>=<value>. Redefining a key keeps its original position.
func (c *CMake) Define(key, value string) *CMake {
	for i := range c.defines {
		if c.defines[i].key == key {
			c.defines[i].value = value
			return c
		}
	}
	c.defines = append(c.defines, define{key: key, value: value})
	return c
}

// TestCommand sets the program and arguments that run the test target inside
// the build directory. The default is "ninja test".
func (c *CMake) TestCommand(cmd ...string) *CMake {
	if len(cmd) > 0 {
		c.testCmd = append([]string(nil), cmd...)
	}
	return c
}

// ConfigureArgs returns the arguments Configure passes to cmake. Paths are
// rewritten relative to the build directory, where cmake runs.
func (c *CMake) ConfigureArgs() ([]string, error) {
	source, err := c.fromBuildDir(c.sourceDir)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(c.defines)+3)
	if c.generator != "" {
		args = append(args, "-G"+c.generator)
	}
	args = append(args, source)
	for _, d := range c.defines {
		args = append(args, "-D"+d.key+"="+d.value)
	}
	if c.toolchain != "" {
		toolchain := c.toolchain
		if !filepath.IsAbs(toolchain) {
			toolchain = filepath.Join(c.sourceDir, toolchain)
		}
		toolchain, err = c.fromBuildDir(toolchain)
		if err != nil {
			return nil, err
		}
		args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+toolchain)
	}
	return args, nil
}

// Configure runs cmake inside the build directory, which must exist.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	cmakeArgs, err := c.ConfigureArgs()
	if err != nil {
		return err
	}
	cmakeArgs = append(cmakeArgs, args...)
	return c.exec.Run(ctx, c.buildDir, env.Tool(env.CMake), cmakeArgs...)
}

// Build runs "cmake --build <build>" from the working directory.
func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmakeArgs := append([]string{"--build", c.buildDir}, args...)
	return c.exec.Run(ctx, "", env.Tool(env.CMake), cmakeArgs...)
}

// Test runs the test command inside the build directory.
func (c *CMake) Test(ctx context.Context, args ...string) error {
	testArgs := append(append([]string(nil), c.testCmd[1:]...), args...)
	return c.exec.Run(ctx, c.buildDir, env.Tool(c.testCmd[0]), testArgs...)
}

// OutputDir returns the build directory.
func (c *CMake) OutputDir() string {
	return c.buildDir
}

// fromBuildDir expresses path relative to the build directory.
func (c *CMake) fromBuildDir(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	base, err := filepath.Abs(c.buildDir)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", c.buildDir)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", path)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		// different volumes
		return target, nil
	}
	return filepath.ToSlash(rel), nil
}
