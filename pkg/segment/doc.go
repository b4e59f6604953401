// Package segment writes immutable segment files.
//
// A segment is the byte-for-byte concatenation of its rows' encodings, in the
// order the row source yields them:
//
//	[row 0][row 1]...[row n-1]
//
// There is no header, no footer and no per-row length. Decoding a segment
// requires the row width from outside the file (see package catalog).
//
// # Writing
//
//	w, err := segment.NewWriter(path, slices.Values(rows))
//	if err != nil {
//	    return err // *CreateError
//	}
//	defer w.Close()
//
//	if err := w.WriteRows(); err != nil {
//	    return err
//	}
//
// A Writer starts Ready and moves to Consumed when WriteRows takes the row
// source. WriteRows flushes every row before encoding the next one. A second
// call fails with ErrAlreadyConsumed and performs no I/O.
//
// # Failure Semantics
//
// Serialization failures (*SerializeError) and write, flush or sync failures
// (*IOError) stop the write immediately. Rows flushed before the failing row
// stay in the file and nothing is rolled back: a segment is not
// crash-consistent while it is being written. Parent directories are never
// created; that is the caller's job.
//
// # Thread Safety
//
// Writer methods are serialized by a mutex, but only one writer may target a
// given path at a time.
package segment
