package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/viant/annreg/internal/mmap"
)

// FileStore keeps streams in local files. Reads go through a read-only
// memory map.
type FileStore struct{}

// NewFileStore returns a local filesystem store.
func NewFileStore() *FileStore { return &FileStore{} }

// Create writes to a temporary file next to path that replaces path on
// Close. Aborting the writer removes the temporary file and leaves path
// untouched.
func (s *FileStore) Create(_ context.Context, path string) (io.WriteCloser, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	return &fileWriter{File: f, path: path}, nil
}

// Open maps the file at path.
func (s *FileStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m, err := mmap.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}
	return &mappedReader{Reader: m.NewReader(), file: m}, nil
}

type mappedReader struct {
	io.Reader
	file *mmap.File
}

func (r *mappedReader) Close() error { return r.file.Close() }

type fileWriter struct {
	*os.File
	path string
	done bool
}

func (w *fileWriter) Close() error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true
	if err := w.File.Close(); err != nil {
		_ = os.Remove(w.File.Name())
		return err
	}
	if err := os.Rename(w.File.Name(), w.path); err != nil {
		_ = os.Remove(w.File.Name())
		return fmt.Errorf("store: commit %s: %w", w.path, err)
	}
	return nil
}

func (w *fileWriter) Abort(error) error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true
	err := w.File.Close()
	return errors.Join(err, os.Remove(w.File.Name()))
}
