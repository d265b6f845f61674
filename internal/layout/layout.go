// Package layout prepares the output directory tree.
package layout

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
)

// DirMode is the permission used for directories created by EnsureDir.
const DirMode = 0o755

// EnsureDir creates path if and only if it does not exist yet. An existing
// directory is left untouched. The parent must already exist.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return eris.Errorf("%s exists and is not a directory", path)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return eris.Wrapf(err, "failed to check %s", path)
	}

	err = os.Mkdir(path, DirMode)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		// created concurrently, or a dangling symlink
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return eris.Wrapf(err, "failed to create %s", path)
}

// Prepare ensures root and then each of dirs, in order.
func Prepare(root string, dirs ...string) error {
	if err := EnsureDir(root); err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}
