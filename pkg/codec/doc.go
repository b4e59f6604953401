// Package codec defines the marshal contract shared by every value pegasus
// writes to a segment.
//
// A Marshaler reports the exact number of bytes its encoding occupies and
// writes that encoding into a buffer the caller owns. Callers size the buffer
// from Size, so encoding never allocates and never writes past the end.
//
// # Encoding
//
// All encodings are fixed width. Multi-byte integers are little-endian
// (ByteOrder), floating point values are written as their IEEE-754 bit
// pattern in the same order, and booleans occupy one byte (0x00 or 0x01).
//
// No type tags, lengths or padding are emitted. A reader must know the layout
// of what it is decoding from somewhere else.
//
// # Error Handling
//
// MarshalTo fails with a *BufferTooSmallError, matched by ErrBufferTooSmall,
// when the destination is shorter than the encoding:
//
//	buf := make([]byte, m.Size())
//	if err := m.MarshalTo(buf); err != nil {
//	    if errors.Is(err, codec.ErrBufferTooSmall) {
//	        // the value under-reported its size
//	    }
//	    return err
//	}
//
// The destination contents are unspecified after an error.
package codec
