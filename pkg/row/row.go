package row

import "github.com/ssargent/pegasus/pkg/codec"

var _ codec.Marshaler = (*Row)(nil)
var _ codec.Marshaler = Field{}

// Row is an immutable, ordered sequence of fields built by a Builder.
//
// Its encoding is the concatenation of its field encodings in order, with no
// framing. Size is therefore the sum of the field widths.
type Row struct {
	fields []Field
	size   int
}

// Len returns the arity of the row.
func (r *Row) Len() int { return len(r.fields) }

// Field returns the i-th field. It panics if i is out of range.
func (r *Row) Field(i int) Field { return r.fields[i] }

// Kinds returns the kind of every field in order.
func (r *Row) Kinds() []Kind {
	kinds := make([]Kind, len(r.fields))
	for i, f := range r.fields {
		kinds[i] = f.Kind()
	}
	return kinds
}

// Size returns the encoded length of the row in bytes.
func (r *Row) Size() int { return r.size }

// MarshalTo writes the row encoding into dst. Nothing is written when dst is
// shorter than Size.
func (r *Row) MarshalTo(dst []byte) error {
	if err := codec.CheckSize(dst, r.size); err != nil {
		return err
	}
	off := 0
	for _, f := range r.fields {
		if err := f.MarshalTo(dst[off:]); err != nil {
			return err
		}
		off += f.Size()
	}
	return nil
}
