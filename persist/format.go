package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Version is the envelope version written by this package.
const Version uint16 = 1

const maxKind = 255

var (
	// MagicIndex opens an index stream.
	MagicIndex = [4]byte{'A', 'N', 'N', 'I'}
	// MagicElements opens an elements stream.
	MagicElements = [4]byte{'A', 'N', 'N', 'E'}
)

var (
	// ErrFormat reports stream content that is corrupt or does not match.
	ErrFormat = errors.New("persist: invalid stream")
	// ErrIO reports a failure of the underlying store.
	ErrIO = errors.New("persist: i/o failure")
	// ErrPanic reports a panic recovered while writing a stream.
	ErrPanic = errors.New("persist: panic")
)

type header struct {
	magic   [4]byte
	version uint16
	kind    string
	gen     uuid.UUID
}

func writeHeader(w io.Writer, h header) error {
	if len(h.kind) > maxKind {
		return fmt.Errorf("%w: kind %q too long", ErrFormat, h.kind)
	}
	buf := make([]byte, 0, 4+2+2+len(h.kind)+16)
	buf = append(buf, h.magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, h.version)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(h.kind)))
	buf = append(buf, h.kind...)
	buf = append(buf, h.gen[:]...)
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader, magic [4]byte) (header, error) {
	var h header
	var fixed [8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	copy(h.magic[:], fixed[:4])
	if h.magic != magic {
		return h, fmt.Errorf("%w: magic %q, want %q", ErrFormat, h.magic[:], magic[:])
	}
	h.version = binary.LittleEndian.Uint16(fixed[4:6])
	if h.version != Version {
		return h, fmt.Errorf("%w: unsupported version %d", ErrFormat, h.version)
	}
	n := binary.LittleEndian.Uint16(fixed[6:8])
	if n > maxKind {
		return h, fmt.Errorf("%w: kind length %d", ErrFormat, n)
	}
	rest := make([]byte, int(n)+16)
	if _, err := io.ReadFull(r, rest); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	h.kind = string(rest[:n])
	copy(h.gen[:], rest[n:])
	return h, nil
}

func writeTrailer(w io.Writer, sum uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], sum)
	_, err := w.Write(buf[:])
	return err
}

func readTrailer(r io.Reader, want uint32) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("read checksum: %w", err)
	}
	if got := binary.LittleEndian.Uint32(buf[:]); got != want {
		return fmt.Errorf("%w: checksum mismatch: stored %08x, computed %08x", ErrFormat, got, want)
	}
	return nil
}
