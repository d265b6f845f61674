// Package doctor checks that the tools and files a run needs are in place.
package doctor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/mod/semver"

	"github.com/goplus/runme/internal/env"
	"github.com/goplus/runme/internal/logging"
	"github.com/goplus/runme/internal/variant"
)

// MinCMakeVersion is the oldest cmake the generated command lines work with.
const MinCMakeVersion = "v3.13.0"

// Check is the outcome of one inspection.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report lists every check in the order it ran.
type Report []Check

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, c := range r {
		if !c.OK {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r Report) Failed() Report {
	var failed Report
	for _, c := range r {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Doctor inspects the environment for a variant set.
type Doctor struct {
	set *variant.Set

	// LookPath and Output are swapped out in tests.
	LookPath func(file string) (string, error)
	Output   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns a Doctor that uses the real PATH.
func New(set *variant.Set) *Doctor {
	return &Doctor{
		set:      set,
		LookPath: exec.LookPath,
		Output: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Run performs every check and logs each result.
func (d *Doctor) Run(ctx context.Context) Report {
	var report Report
	add := func(c Check) {
		report = append(report, c)
		log := logging.From(ctx)
		if c.OK {
			log.Info().Str("check", c.Name).Msgf("%s: %s", c.Name, c.Detail)
		} else {
			log.Error().Str("check", c.Name).Msgf("%s: %s", c.Name, c.Detail)
		}
	}

	cmakePath, found := d.lookup(env.CMake, add)
	if found {
		add(d.checkCMakeVersion(ctx, cmakePath))
	}

	if len(d.set.TestCommand) > 0 && d.set.TestCommand[0] != env.CMake {
		d.lookup(d.set.TestCommand[0], add)
	}

	for _, v := range d.set.Variants {
		if v.Toolchain == "" {
			continue
		}
		add(d.checkToolchain(v))
	}
	return report
}

func (d *Doctor) lookup(tool string, add func(Check)) (string, bool) {
	name := env.Tool(tool)
	path, err := d.LookPath(name)
	if err != nil {
		add(Check{Name: tool, Detail: "not found (set " + env.OverrideVar(tool) + " to override)"})
		return "", false
	}
	add(Check{Name: tool, OK: true, Detail: path})
	return path, true
}

func (d *Doctor) checkCMakeVersion(ctx context.Context, path string) Check {
	c := Check{Name: "cmake version"}
	out, err := d.Output(ctx, path, "--version")
	if err != nil {
		c.Detail = eris.Wrapf(err, "failed to run %s --version", path).Error()
		return c
	}
	version, err := ParseCMakeVersion(string(out))
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	if err := CheckCMakeVersion(version); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = version
	return c
}

func (d *Doctor) checkToolchain(v variant.Variant) Check {
	c := Check{Name: "toolchain " + v.Name}
	path := v.Toolchain
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.set.Source, path)
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.Detail = path + " does not exist"
	case err != nil:
		c.Detail = err.Error()
	case info.IsDir():
		c.Detail = path + " is a directory"
	default:
		c.OK = true
		c.Detail = path
	}
	return c
}

var versionRe = regexp.MustCompile(`cmake version ([0-9]+\.[0-9]+(?:\.[0-9]+)?(?:-[0-9A-Za-z.-]+)?)`)

// ParseCMakeVersion extracts the version from "cmake --version" output and
// returns it in semver form, e.g. "v3.28.1".
func ParseCMakeVersion(out string) (string, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		line, _, _ := strings.Cut(out, "\n")
		return "", eris.Errorf("unrecognized cmake --version output %q", strings.TrimSpace(line))
	}
	v := "v" + m[1]
	if !semver.IsValid(v) {
		return "", eris.Errorf("cmake reported an invalid version %q", m[1])
	}
	return v, nil
}

// CheckCMakeVersion fails for versions older than MinCMakeVersion.
func CheckCMakeVersion(version string) error {
	if semver.Compare(version, MinCMakeVersion) < 0 {
		return eris.Errorf("cmake %s is older than the required %s", version, MinCMakeVersion)
	}
	return nil
}
