package fs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// atomicWriter writes a file through a temporary file in the same directory,
// so readers never observe partially written content.
type atomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
}

func newAtomicWriter(path string) (*atomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	file, err := os.CreateTemp(dir, ".podarchive-*.tmp")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp file")
	}

	return &atomicWriter{path: path, tmpPath: file.Name(), file: file}, nil
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Commit replaces the target file with the temporary one.
func (w *atomicWriter) Commit() error {
	if err := w.file.Sync(); err != nil {
		_ = w.Abort()
		return errors.Wrap(err, "sync failed")
	}

	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "close failed")
	}

	if err := os.Rename(w.tmpPath, w.path); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrapf(err, "failed to rename to %s", w.path)
	}

	return nil
}

// Abort discards the temporary file.
func (w *atomicWriter) Abort() error {
	_ = w.file.Close()
	return os.Remove(w.tmpPath)
}

func writeFileAtomic(path string, data []byte) error {
	w, err := newAtomicWriter(path)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return errors.Wrap(err, "write failed")
	}

	return w.Commit()
}
