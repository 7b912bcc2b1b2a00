package registry

import (
	"errors"
	"fmt"
)

// Kind classifies registry failures.
type Kind int

const (
	// NotFound: no index is registered under the name.
	NotFound Kind = iota + 1
	// IOFailure: a stream could not be created, opened, read or written.
	IOFailure
	// InternalFault: a builder panicked or failed unexpectedly.
	InternalFault
	// InvalidInput: arguments or stream content were rejected.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case IOFailure:
		return "i/o failure"
	case InternalFault:
		return "internal fault"
	case InvalidInput:
		return "invalid input"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	ErrNotFound     = errors.New("registry: index not found")
	ErrIO           = errors.New("registry: i/o failure")
	ErrInternal     = errors.New("registry: internal fault")
	ErrInvalidInput = errors.New("registry: invalid input")
)

func (k Kind) sentinel() error {
	switch k {
	case NotFound:
		return ErrNotFound
	case IOFailure:
		return ErrIO
	case InternalFault:
		return ErrInternal
	case InvalidInput:
		return ErrInvalidInput
	}
	return nil
}

// Error describes a failed registry operation.
type Error struct {
	Op   string
	Name string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("registry: %s %q: %s", e.Op, e.Name, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(op, name string, kind Kind, err error) *Error {
	return &Error{Op: op, Name: name, Kind: kind, Err: err}
}

// KindOf returns the kind of a registry error, or 0 when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
