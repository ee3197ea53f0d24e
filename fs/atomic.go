package fs

import (
	"os"
	"path/filepath"
)

// AtomicDir replaces a directory atomically. Files are written to
// baseDir/name.tmp and moved to baseDir/name on Commit.
type AtomicDir struct {
	baseDir string
	name    string
}

// NewAtomicDir creates a new AtomicDir.
func NewAtomicDir(baseDir, name string) *AtomicDir {
	return &AtomicDir{
		baseDir: baseDir,
		name:    name,
	}
}

// TempDir is the staging directory.
func (d *AtomicDir) TempDir() string {
	return filepath.Join(d.baseDir, d.name+".tmp")
}

// FinalDir is the directory replaced on Commit.
func (d *AtomicDir) FinalDir() string {
	return filepath.Join(d.baseDir, d.name)
}

// Begin creates an empty staging directory, discarding leftovers of an
// earlier interrupted write.
func (d *AtomicDir) Begin() error {
	if err := os.RemoveAll(d.TempDir()); err != nil {
		return err
	}
	return os.MkdirAll(d.TempDir(), 0755)
}

// Commit replaces the final directory with the staging directory.
func (d *AtomicDir) Commit() error {
	// Rename the old directory aside first so a failed rename leaves it intact.
	old := d.FinalDir() + ".old"
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	if _, err := os.Stat(d.FinalDir()); err == nil {
		if err := os.Rename(d.FinalDir(), old); err != nil {
			return err
		}
	}

	if err := os.Rename(d.TempDir(), d.FinalDir()); err != nil {
		_ = os.Rename(old, d.FinalDir())
		return err
	}

	return os.RemoveAll(old)
}

// Abort removes the staging directory.
func (d *AtomicDir) Abort() error {
	return os.RemoveAll(d.TempDir())
}
