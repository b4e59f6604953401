package row

import (
	"errors"
	"fmt"
)

var (
	// ErrArityMismatch is matched by every ArityError.
	ErrArityMismatch = errors.New("row: arity mismatch")
	// ErrBuilderConsumed is returned by Build once a builder produced a row.
	ErrBuilderConsumed = errors.New("row: builder already consumed")
	// ErrInvalidField is returned by Build when a field holds no value, as
	// with the zero Field or NewField(nil).
	ErrInvalidField = errors.New("row: invalid field")
)

// ArityError reports a row built with the wrong number of fields.
type ArityError struct {
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("row: arity mismatch: expected %d fields, got %d", e.Expected, e.Actual)
}

func (e *ArityError) Is(target error) bool { return target == ErrArityMismatch }

// Builder accumulates fields for a row of fixed arity. A successful Build
// consumes the builder.
type Builder struct {
	arity    int
	fields   []Field
	consumed bool
}

// NewBuilder returns a builder for rows of the given arity.
func NewBuilder(arity int) *Builder {
	return &Builder{
		arity:  arity,
		fields: make([]Field, 0, max(arity, 0)),
	}
}

// AddField appends f. The arity is only checked by Build.
func (b *Builder) AddField(f Field) *Builder {
	if !b.consumed {
		b.fields = append(b.fields, f)
	}
	return b
}

// Add wraps v in a Field and appends it.
func (b *Builder) Add(v FieldType) *Builder {
	return b.AddField(NewField(v))
}

// Build returns the row, or an ArityError if the number of fields added
// differs from the declared arity. Fields without a value fail with
// ErrInvalidField. A failed Build leaves the builder usable.
func (b *Builder) Build() (*Row, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	if len(b.fields) != b.arity {
		return nil, &ArityError{Expected: b.arity, Actual: len(b.fields)}
	}
	for i, f := range b.fields {
		if f.Kind() == KindInvalid {
			return nil, fmt.Errorf("%w: field %d has no value", ErrInvalidField, i)
		}
	}

	r := &Row{fields: b.fields}
	for _, f := range r.fields {
		r.size += f.Size()
	}

	b.fields = nil
	b.consumed = true
	return r, nil
}
