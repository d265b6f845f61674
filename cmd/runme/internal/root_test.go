package internal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/goplus/runme/internal/runner"
	"github.com/goplus/runme/internal/variant"
)

// execute runs the command line with fresh flag values and returns the exit
// code and everything written to the command's output.
func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	verbose, noColor, variantsFile, dryRun, variantsYAML = false, true, "", false, false
	t.Setenv("RUNME_CMAKE", "")
	t.Setenv("RUNME_NINJA", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	return Execute(), out.String()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"tool status", eris.Wrap(&runner.ExitError{Command: "ninja test", Code: 7}, "test failed for variant host"), 7},
		{"config", &variant.ConfigError{File: "v.yaml", Err: errors.New("no variants declared")}, ExitConfigError},
		{"usage", &usageError{err: errors.New(`unknown flag: --bogus`)}, ExitConfigError},
		{"environment", &envError{failed: 2}, ExitEnvError},
		{"other", eris.New("failed to create build"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestVariantsCommand(t *testing.T) {
	code, out := execute(t, "variants")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}

	for _, want := range []string{
		"host (" + filepath.Join("build", "host") + ")\n  configure: cmake -GNinja ../.. -DBUILD_TESTING=1\n",
		"ming (" + filepath.Join("build", "ming") + ")\n",
		"  configure: cmake -GNinja ../.. -DBUILD_TESTING=1 -DUNICODE=1 -DCMAKE_TOOLCHAIN_FILE=../../toolchain-x86_64-w64-mingw32.cmake\n",
		"  toolchain: toolchain-x86_64-w64-mingw32.cmake\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestVariantsYAMLLoadsBack verifies that "variants --yaml" prints a file
// that --file accepts.
func TestVariantsYAMLLoadsBack(t *testing.T) {
	code, out := execute(t, "variants", "--yaml")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}

	file := filepath.Join(t.TempDir(), "variants.yaml")
	if err := os.WriteFile(file, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	code, listed := execute(t, "variants", "--file", file)
	if code != ExitSuccess {
		t.Fatalf("exit code with --file = %d", code)
	}
	_, builtin := execute(t, "variants")
	if listed != builtin {
		t.Errorf("listing from file differs:\n%s\nwant\n%s", listed, builtin)
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"extra"},
		{"--bogus"},
		{"variants", "extra"},
	} {
		if code, _ := execute(t, args...); code != ExitConfigError {
			t.Errorf("runme %s exited %d, want %d", strings.Join(args, " "), code, ExitConfigError)
		}
	}
}

func TestBadVariantsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "variants.yaml")
	if err := os.WriteFile(file, []byte("variants:\n  - name: host\n  - name: host\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code, _ := execute(t, "--file", file); code != ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, ExitConfigError)
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	chdir(t, t.TempDir())

	if code, _ := execute(t, "--dry-run"); code != ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if _, err := os.Stat("build"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run created build/ (stat error %v)", err)
	}
}
