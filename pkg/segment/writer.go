package segment

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/ssargent/pegasus/pkg/codec"
)

// State is the lifecycle state of a Writer.
type State int

const (
	// StateReady writers still hold their row source.
	StateReady State = iota
	// StateConsumed writers have handed their row source to WriteRows.
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateConsumed:
		return "consumed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats describes what a writer has flushed so far.
type Stats struct {
	Rows  int
	Bytes int64
}

// Writer streams the rows of a one-shot source into a segment file.
//
// The segment is the plain concatenation of the row encodings in source
// order. WriteRows may run once; every row is flushed before the next one is
// encoded. A failure stops the write and leaves the rows flushed so far in
// the file, so a segment is not atomic.
type Writer[T codec.Marshaler] struct {
	path    string
	file    *os.File
	sink    *bufio.Writer
	rows    iter.Seq[T]
	state   State
	scratch []byte
	stats   Stats
	opts    options
	closed  bool
	mutex   sync.Mutex
}

// NewWriter creates or truncates the segment file at path and binds it to
// rows. The parent directory must already exist; failures are returned as a
// *CreateError and leave no file behind.
func NewWriter[T codec.Marshaler](path string, rows iter.Seq[T], opts ...Option) (*Writer[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		cerr := &CreateError{Path: path, Err: err}
		o.metrics.observeFailure(cerr)
		o.logger.Error("segment create failed", "path", path, "error", err)
		return nil, cerr
	}

	o.logger.Debug("segment opened", "path", path, "buffer_size", o.bufferSize, "sync", o.sync)

	return &Writer[T]{
		path:  path,
		file:  file,
		sink:  bufio.NewWriterSize(file, o.bufferSize),
		rows:  rows,
		state: StateReady,
		opts:  o,
	}, nil
}

// WriteRows consumes the row source and writes every row to the segment.
// Calling it again returns ErrAlreadyConsumed without touching the file.
//
// The source runs without the writer lock held, so it may call State, Stats
// or WriteRows on the same writer.
func (w *Writer[T]) WriteRows() error {
	rows, err := w.take()
	if err != nil {
		w.opts.metrics.observeFailure(err)
		return err
	}

	start := time.Now()
	err = w.writeAll(rows)
	elapsed := time.Since(start)
	w.opts.metrics.observeSegment(elapsed, err)

	stats := w.Stats()
	if err != nil {
		w.opts.metrics.observeFailure(err)
		w.opts.logger.Error("segment write aborted",
			"path", w.path,
			"rows", stats.Rows,
			"bytes", stats.Bytes,
			"kind", errorKind(err),
			"error", err)
		return err
	}

	w.opts.logger.Debug("segment written",
		"path", w.path,
		"rows", stats.Rows,
		"bytes", stats.Bytes,
		"duration", elapsed)
	return nil
}

// take moves the writer to StateConsumed and hands out the row source.
func (w *Writer[T]) take() (iter.Seq[T], error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.state == StateConsumed {
		return nil, ErrAlreadyConsumed
	}
	rows := w.rows
	w.rows = nil
	w.state = StateConsumed
	return rows, nil
}

func (w *Writer[T]) writeAll(rows iter.Seq[T]) error {
	if rows == nil {
		return nil
	}
	index := 0
	for r := range rows {
		if err := w.writeRow(index, r); err != nil {
			return err
		}
		index++
	}
	return nil
}

// writeRow encodes r into the scratch buffer, appends it to the sink and
// flushes.
func (w *Writer[T]) writeRow(index int, r T) error {
	n := r.Size()
	if n < 0 {
		return &SerializeError{Path: w.path, Row: index, Size: n, Err: fmt.Errorf("negative size %d", n)}
	}

	if cap(w.scratch) < n {
		w.scratch = make([]byte, n)
	}
	buf := w.scratch[:n]
	clear(buf)

	if err := r.MarshalTo(buf); err != nil {
		return &SerializeError{Path: w.path, Row: index, Size: n, Err: err}
	}

	if _, err := w.sink.Write(buf); err != nil {
		return &IOError{Path: w.path, Row: index, Op: "write", Err: err}
	}
	if err := w.sink.Flush(); err != nil {
		return &IOError{Path: w.path, Row: index, Op: "flush", Err: err}
	}
	if w.opts.sync {
		if err := w.file.Sync(); err != nil {
			return &IOError{Path: w.path, Row: index, Op: "sync", Err: err}
		}
	}

	w.mutex.Lock()
	w.stats.Rows++
	w.stats.Bytes += int64(n)
	w.mutex.Unlock()
	w.opts.metrics.observeRow(n)
	return nil
}

// Close releases the segment file. It is safe to call more than once.
func (w *Writer[T]) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.sink.Flush(); err != nil {
		if closeErr := w.file.Close(); closeErr != nil {
			w.opts.logger.Warn("segment close failed", "path", w.path, "error", closeErr)
		}
		return err
	}
	return w.file.Close()
}

// State returns the lifecycle state.
func (w *Writer[T]) State() State {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.state
}

// Stats returns the rows and bytes flushed so far.
func (w *Writer[T]) Stats() Stats {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.stats
}

// Path returns the segment file path.
func (w *Writer[T]) Path() string {
	return w.path
}
