package persist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/store"
	"github.com/viant/annreg/vector"
)

// Adapter saves builders to, and restores them from, a pair of locations.
type Adapter struct {
	resolver  *store.Resolver
	factories map[string]ann.Factory
}

// NewAdapter creates an adapter that resolves locations with resolver and
// restores the given builder kinds.
func NewAdapter(resolver *store.Resolver, factories ...ann.Factory) *Adapter {
	if resolver == nil {
		resolver = store.NewResolver()
	}
	a := &Adapter{resolver: resolver, factories: make(map[string]ann.Factory, len(factories))}
	for _, f := range factories {
		a.factories[f.Kind()] = f
	}
	return a
}

// Resolver returns the location resolver.
func (a *Adapter) Resolver() *store.Resolver { return a.resolver }

func ioFailure(op, location string, err error) error {
	return fmt.Errorf("persist: %s %s: %w: %w", op, location, ErrIO, err)
}

func formatFailure(location string, err error) error {
	if errors.Is(err, ErrFormat) {
		return fmt.Errorf("persist: %s: %w", location, err)
	}
	return fmt.Errorf("persist: %s: %w: %w", location, ErrFormat, err)
}

// Save writes the index and elements streams of b concurrently under a fresh
// generation id. Both streams are committed only after both were written;
// when either fails, both are aborted and the locations keep their previous
// contents. The caller must keep b unchanged until Save returns.
func (a *Adapter) Save(ctx context.Context, b ann.Builder, indexLocation, elementsLocation string) error {
	gen := uuid.New()
	var index, elements io.WriteCloser
	var g errgroup.Group
	g.Go(func() (err error) {
		index, err = a.writeStream(ctx, indexLocation, header{magic: MagicIndex, version: Version, kind: b.Kind(), gen: gen}, b.WriteIndex)
		return err
	})
	g.Go(func() (err error) {
		elements, err = a.writeStream(ctx, elementsLocation, header{magic: MagicElements, version: Version, gen: gen}, b.WriteElements)
		return err
	})
	if err := g.Wait(); err != nil {
		for _, w := range []io.WriteCloser{index, elements} {
			if w != nil {
				_ = store.Abort(w, err)
			}
		}
		return err
	}
	if err := elements.Close(); err != nil {
		_ = store.Abort(index, err)
		return ioFailure("close", elementsLocation, err)
	}
	if err := index.Close(); err != nil {
		return ioFailure("close", indexLocation, err)
	}
	return nil
}

// writeStream encodes one stream into a writer for location and returns it
// uncommitted. On failure the writer is aborted and nil is returned.
func (a *Adapter) writeStream(ctx context.Context, location string, h header, payload func(io.Writer) error) (w io.WriteCloser, err error) {
	var dst io.WriteCloser
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("persist: write %s: %w: %v", location, ErrPanic, r)
			if dst != nil {
				_ = store.Abort(dst, err)
			}
		}
	}()
	dst, err = a.resolver.Create(ctx, location)
	if err != nil {
		return nil, ioFailure("create", location, err)
	}
	if err = encodeStream(dst, CompressionFor(location), h, payload); err != nil {
		_ = store.Abort(dst, err)
		return nil, ioFailure("write", location, err)
	}
	return dst, nil
}

func encodeStream(dst io.Writer, c Compression, h header, payload func(io.Writer) error) error {
	cw, err := c.wrapWriter(dst)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(cw)
	if err := writeHeader(bw, h); err != nil {
		return err
	}
	sum := newChecksumWriter(bw)
	if err := payload(sum); err != nil {
		return err
	}
	if err := writeTrailer(bw, sum.Sum()); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return cw.Close()
}

// Load reads the elements stream, then the index stream, and returns the
// restored builder. Nothing is returned unless both streams decode, carry
// the same generation and pass their checksums.
func (a *Adapter) Load(ctx context.Context, indexLocation, elementsLocation string) (ann.Builder, error) {
	var elements *vector.Elements
	var gen uuid.UUID
	err := a.readStream(ctx, elementsLocation, MagicElements, func(h header, r io.Reader) error {
		if h.kind != "" {
			return fmt.Errorf("%w: elements stream has kind %q", ErrFormat, h.kind)
		}
		gen = h.gen
		var err error
		elements, err = vector.ReadElements(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var builder ann.Builder
	err = a.readStream(ctx, indexLocation, MagicIndex, func(h header, r io.Reader) error {
		if h.gen != gen {
			return fmt.Errorf("%w: generation %s does not match elements generation %s", ErrFormat, h.gen, gen)
		}
		factory, ok := a.factories[h.kind]
		if !ok {
			return fmt.Errorf("%w: unknown builder kind %q", ErrFormat, h.kind)
		}
		var err error
		if builder, err = factory.ReadIndex(r, elements); err != nil {
			return err
		}
		if builder.Built() > elements.Len() {
			return fmt.Errorf("%w: index covers %d elements, stream has %d", ErrFormat, builder.Built(), elements.Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return builder, nil
}

func (a *Adapter) readStream(ctx context.Context, location string, magic [4]byte, payload func(header, io.Reader) error) error {
	src, err := a.resolver.Open(ctx, location)
	if err != nil {
		return ioFailure("open", location, err)
	}
	defer src.Close()

	raw := &sourceReader{r: src}
	dr, err := CompressionFor(location).wrapReader(raw)
	if err != nil {
		return ioFailure("open", location, err)
	}
	defer dr.Close()

	if err := decodeStream(bufio.NewReader(dr), magic, payload); err != nil {
		if raw.err != nil {
			return ioFailure("read", location, raw.err)
		}
		return formatFailure(location, err)
	}
	return nil
}

func decodeStream(br *bufio.Reader, magic [4]byte, payload func(header, io.Reader) error) error {
	h, err := readHeader(br, magic)
	if err != nil {
		return err
	}
	sum := newChecksumReader(br)
	if err := payload(h, sum); err != nil {
		return err
	}
	if err := readTrailer(br, sum.Sum()); err != nil {
		return err
	}
	if _, err := br.Peek(1); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: trailing data after checksum", ErrFormat)
	}
	return nil
}
