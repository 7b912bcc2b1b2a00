package persist

import (
	"hash"
	"hash/crc32"
	"io"
)

// checksumWriter computes a running CRC32 (IEEE) of everything written.
type checksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{w: w, hash: crc32.NewIEEE()}
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.hash.Write(p[:n])
	return n, err
}

func (cw *checksumWriter) Sum() uint32 { return cw.hash.Sum32() }

// checksumReader computes a running CRC32 (IEEE) of everything read.
type checksumReader struct {
	r    io.Reader
	hash hash.Hash32
}

func newChecksumReader(r io.Reader) *checksumReader {
	return &checksumReader{r: r, hash: crc32.NewIEEE()}
}

func (cr *checksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.hash.Write(p[:n])
	return n, err
}

func (cr *checksumReader) Sum() uint32 { return cr.hash.Sum32() }

// sourceReader remembers the first failure of the underlying stream so decode
// errors can be told apart from I/O errors.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}
