package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrCreate is matched by every CreateError.
	ErrCreate = errors.New("segment: create failed")
	// ErrSerialization is matched by every SerializeError.
	ErrSerialization = errors.New("segment: serialization failed")
	// ErrIO is matched by every IOError.
	ErrIO = errors.New("segment: i/o failed")
	// ErrAlreadyConsumed is returned when WriteRows runs on a consumed writer.
	ErrAlreadyConsumed = errors.New("segment: writer already consumed")
)

// CreateError reports a segment file that could not be opened for writing.
type CreateError struct {
	Path string
	Err  error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("segment: create %s: %v", e.Path, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

func (e *CreateError) Is(target error) bool { return target == ErrCreate }

// SerializeError reports a row that could not be encoded. Row is the
// zero-based position of the row in the source.
type SerializeError struct {
	Path string
	Row  int
	Size int
	Err  error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("segment: serialize row %d (%d bytes) for %s: %v", e.Row, e.Size, e.Path, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

func (e *SerializeError) Is(target error) bool { return target == ErrSerialization }

// IOError reports a failed write, flush or sync of row Row. Rows before it
// remain in the file.
type IOError struct {
	Path string
	Row  int
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("segment: %s row %d to %s: %v", e.Op, e.Row, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// errorKind labels err for metrics and logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrSerialization):
		return "serialization"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrAlreadyConsumed):
		return "already_consumed"
	case errors.Is(err, ErrCreate):
		return "create"
	default:
		return "unknown"
	}
}
