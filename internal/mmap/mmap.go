// Package mmap maps local files read-only for stream decoding.
package mmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// ErrFault reports a page fault while reading mapped memory, typically
// because the file shrank after it was mapped.
var ErrFault = errors.New("mmap: fault reading mapped file")

// File is a read-only view of a file's contents.
type File struct {
	data   []byte
	mapped bool
	once   sync.Once
	err    error
}

// Open maps the file at path. Empty files yield an empty, unmapped view.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &File{data: []byte{}}, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("mmap: %s too large to map (%d bytes)", path, size)
	}
	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &File{data: data, mapped: mapped}, nil
}

// Bytes returns the mapped contents; they are invalid after Close.
func (m *File) Bytes() []byte { return m.data }

// Len returns the size of the view.
func (m *File) Len() int { return len(m.data) }

// NewReader returns a reader over the contents. Faults raised while copying
// out of the mapping are returned as ErrFault instead of crashing the
// process.
func (m *File) NewReader() *Reader { return &Reader{file: m} }

// Reader reads sequentially from a File.
type Reader struct {
	file *File
	off  int
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	data := r.file.data
	if r.off >= len(data) {
		return 0, io.EOF
	}
	n, err = guardedCopy(p, data[r.off:])
	r.off += n
	return n, err
}

// guardedCopy copies src into dst, turning a SIGBUS or SIGSEGV on the
// mapped pages into ErrFault.
func guardedCopy(dst, src []byte) (n int, err error) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("%w: %v", ErrFault, r)
		}
	}()
	return copy(dst, src), nil
}

// Close releases the mapping. It is safe to call more than once.
func (m *File) Close() error {
	m.once.Do(func() {
		if m.mapped {
			m.err = unmap(m.data)
		}
		m.data = nil
	})
	return m.err
}
