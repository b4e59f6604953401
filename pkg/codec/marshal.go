package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ByteOrder is the byte order of every multi-byte value written by pegasus.
var ByteOrder = binary.LittleEndian

// ErrBufferTooSmall is matched by every BufferTooSmallError.
var ErrBufferTooSmall = errors.New("codec: buffer too small")

// Marshaler is implemented by values that know their exact encoded length
// and can write that encoding into a caller-provided buffer.
type Marshaler interface {
	// Size returns the exact number of bytes MarshalTo writes.
	Size() int
	// MarshalTo writes the encoding into dst[:Size()]. It fails with a
	// BufferTooSmallError when dst is shorter than needed; dst contents are
	// unspecified after an error.
	MarshalTo(dst []byte) error
}

// BufferTooSmallError reports a destination buffer shorter than the encoding.
type BufferTooSmallError struct {
	Need int
	Have int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("codec: buffer too small: need %d bytes, have %d", e.Need, e.Have)
}

func (e *BufferTooSmallError) Is(target error) bool { return target == ErrBufferTooSmall }

// CheckSize returns a BufferTooSmallError when dst cannot hold need bytes.
func CheckSize(dst []byte, need int) error {
	if len(dst) < need {
		return &BufferTooSmallError{Need: need, Have: len(dst)}
	}
	return nil
}

// Marshal encodes m into a freshly allocated buffer of exactly m.Size() bytes.
func Marshal(m Marshaler) ([]byte, error) {
	n := m.Size()
	if n < 0 {
		return nil, fmt.Errorf("codec: negative size %d", n)
	}
	buf := make([]byte, n)
	if err := m.MarshalTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
