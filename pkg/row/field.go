package row

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ssargent/pegasus/pkg/codec"
)

// FieldType is the closed set of primitive values a Field can hold. Exactly
// one variant is active per value; the set is sealed by the unexported put.
type FieldType interface {
	Kind() Kind
	// EncodedWidth is the number of bytes the value occupies on disk.
	EncodedWidth() int
	// put writes the encoding; dst is at least EncodedWidth bytes long.
	put(dst []byte)
}

type (
	Bool    bool
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64
)

func (Bool) Kind() Kind    { return KindBool }
func (Int8) Kind() Kind    { return KindInt8 }
func (Int16) Kind() Kind   { return KindInt16 }
func (Int32) Kind() Kind   { return KindInt32 }
func (Int64) Kind() Kind   { return KindInt64 }
func (Uint8) Kind() Kind   { return KindUint8 }
func (Uint16) Kind() Kind  { return KindUint16 }
func (Uint32) Kind() Kind  { return KindUint32 }
func (Uint64) Kind() Kind  { return KindUint64 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }

func (Bool) EncodedWidth() int    { return 1 }
func (Int8) EncodedWidth() int    { return 1 }
func (Int16) EncodedWidth() int   { return 2 }
func (Int32) EncodedWidth() int   { return 4 }
func (Int64) EncodedWidth() int   { return 8 }
func (Uint8) EncodedWidth() int   { return 1 }
func (Uint16) EncodedWidth() int  { return 2 }
func (Uint32) EncodedWidth() int  { return 4 }
func (Uint64) EncodedWidth() int  { return 8 }
func (Float32) EncodedWidth() int { return 4 }
func (Float64) EncodedWidth() int { return 8 }

func (v Bool) put(dst []byte) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

func (v Int8) put(dst []byte)    { dst[0] = byte(v) }
func (v Int16) put(dst []byte)   { codec.ByteOrder.PutUint16(dst, uint16(v)) }
func (v Int32) put(dst []byte)   { codec.ByteOrder.PutUint32(dst, uint32(v)) }
func (v Int64) put(dst []byte)   { codec.ByteOrder.PutUint64(dst, uint64(v)) }
func (v Uint8) put(dst []byte)   { dst[0] = byte(v) }
func (v Uint16) put(dst []byte)  { codec.ByteOrder.PutUint16(dst, uint16(v)) }
func (v Uint32) put(dst []byte)  { codec.ByteOrder.PutUint32(dst, uint32(v)) }
func (v Uint64) put(dst []byte)  { codec.ByteOrder.PutUint64(dst, uint64(v)) }
func (v Float32) put(dst []byte) { codec.ByteOrder.PutUint32(dst, math.Float32bits(float32(v))) }
func (v Float64) put(dst []byte) { codec.ByteOrder.PutUint64(dst, math.Float64bits(float64(v))) }

// Field wraps exactly one FieldType value. The zero Field holds nothing and
// encodes to zero bytes.
type Field struct {
	value FieldType
}

// NewField wraps v.
func NewField(v FieldType) Field {
	return Field{value: v}
}

// Value returns the wrapped variant.
func (f Field) Value() FieldType { return f.value }

// Kind returns the kind of the wrapped variant.
func (f Field) Kind() Kind {
	if f.value == nil {
		return KindInvalid
	}
	return f.value.Kind()
}

// Size returns the encoded width of the field.
func (f Field) Size() int {
	if f.value == nil {
		return 0
	}
	return f.value.EncodedWidth()
}

// MarshalTo writes the field encoding into dst.
func (f Field) MarshalTo(dst []byte) error {
	n := f.Size()
	if err := codec.CheckSize(dst, n); err != nil {
		return err
	}
	if n > 0 {
		f.value.put(dst[:n])
	}
	return nil
}

func (f Field) String() string {
	if f.value == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%v)", f.Kind(), f.value)
}

// ParseField converts text into a field of the given kind. Integers are
// always decimal, so a leading zero is not an octal prefix.
func ParseField(kind Kind, text string) (Field, error) {
	s := strings.TrimSpace(text)

	var (
		v   FieldType
		err error
	)
	switch kind {
	case KindBool:
		var b bool
		b, err = strconv.ParseBool(s)
		v = Bool(b)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		var i int64
		i, err = strconv.ParseInt(s, 10, kind.Width()*8)
		v = intField(kind, i)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		var u uint64
		u, err = strconv.ParseUint(s, 10, kind.Width()*8)
		v = uintField(kind, u)
	case KindFloat32:
		var fl float64
		fl, err = strconv.ParseFloat(s, 32)
		v = Float32(fl)
	case KindFloat64:
		var fl float64
		fl, err = strconv.ParseFloat(s, 64)
		v = Float64(fl)
	default:
		return Field{}, fmt.Errorf("row: cannot parse field of kind %s", kind)
	}
	if err != nil {
		return Field{}, fmt.Errorf("row: parse %s %q: %w", kind, text, err)
	}
	return NewField(v), nil
}

func intField(kind Kind, i int64) FieldType {
	switch kind {
	case KindInt8:
		return Int8(i)
	case KindInt16:
		return Int16(i)
	case KindInt32:
		return Int32(i)
	default:
		return Int64(i)
	}
}

func uintField(kind Kind, u uint64) FieldType {
	switch kind {
	case KindUint8:
		return Uint8(u)
	case KindUint16:
		return Uint16(u)
	case KindUint32:
		return Uint32(u)
	default:
		return Uint64(u)
	}
}
