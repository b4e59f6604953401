// Package row implements the typed field model and fixed-arity rows written
// into segments.
//
// A FieldType is one of a closed set of fixed-width primitives (Int32,
// Float64, Bool, ...). Rows are assembled with a Builder that enforces the
// declared arity:
//
//	r, err := row.NewBuilder(2).
//	    Add(row.Int32(13)).
//	    Add(row.Int32(101)).
//	    Build()
//
// Row and Field implement codec.Marshaler. A row encodes as the plain
// concatenation of its fields, so the encoding carries no type information.
package row
