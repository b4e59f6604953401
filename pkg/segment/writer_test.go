package segment

import (
	"bytes"
	"encoding/binary"
	"errors"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/pegasus/pkg/codec"
	"github.com/ssargent/pegasus/pkg/row"
)

func int32Rows(t *testing.T, pairs ...[2]int32) []*row.Row {
	t.Helper()
	rows := make([]*row.Row, 0, len(pairs))
	for _, p := range pairs {
		r, err := row.NewBuilder(2).
			Add(row.Int32(p[0])).
			Add(row.Int32(p[1])).
			Build()
		require.NoError(t, err)
		rows = append(rows, r)
	}
	return rows
}

// lyingMarshaler reports size bytes but needs len(payload).
type lyingMarshaler struct {
	size    int
	payload []byte
}

func (m lyingMarshaler) Size() int { return m.size }

func (m lyingMarshaler) MarshalTo(dst []byte) error {
	if err := codec.CheckSize(dst, len(m.payload)); err != nil {
		return err
	}
	copy(dst, m.payload)
	return nil
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestWriter_WriteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part1.seg")
	rows := int32Rows(t, [2]int32{13, 101}, [2]int32{14, 102}, [2]int32{15, 103})

	writer, err := NewWriter(path, slices.Values(rows))
	require.NoError(t, err)
	defer writer.Close()

	assert.Equal(t, StateReady, writer.State())
	assert.Equal(t, path, writer.Path())

	require.NoError(t, writer.WriteRows())
	assert.Equal(t, StateConsumed, writer.State())
	assert.Equal(t, Stats{Rows: 3, Bytes: 24}, writer.Stats())

	want := make([]byte, 0, 24)
	for _, v := range []uint32{13, 101, 14, 102, 15, 103} {
		want = binary.LittleEndian.AppendUint32(want, v)
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriter_ConcatenatesRowEncodings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.seg")

	var rows []*row.Row
	var want []byte
	for i := 0; i < 50; i++ {
		r, err := row.NewBuilder(3).
			Add(row.Int64(int64(i) * 1000)).
			Add(row.Bool(i%2 == 0)).
			Add(row.Float64(float64(i) / 3)).
			Build()
		require.NoError(t, err)
		rows = append(rows, r)

		enc, err := codec.Marshal(r)
		require.NoError(t, err)
		want = append(want, enc...)
	}

	writer, err := NewWriter(path, slices.Values(rows))
	require.NoError(t, err)
	require.NoError(t, writer.WriteRows())
	require.NoError(t, writer.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 50*(8+1+8))
	assert.Equal(t, want, got)
}

func TestWriter_VaryingRowWidths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "varying.seg")

	wide, err := row.NewBuilder(2).Add(row.Uint64(0xFFFFFFFFFFFFFFFF)).Add(row.Uint64(0xEEEEEEEEEEEEEEEE)).Build()
	require.NoError(t, err)
	narrow, err := row.NewBuilder(1).Add(row.Uint8(0x01)).Build()
	require.NoError(t, err)
	empty, err := row.NewBuilder(0).Build()
	require.NoError(t, err)

	writer, err := NewWriter(path, slices.Values([]*row.Row{wide, narrow, empty, narrow}))
	require.NoError(t, err)
	require.NoError(t, writer.WriteRows())
	require.NoError(t, writer.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := append(bytes.Repeat([]byte{0xFF}, 8), bytes.Repeat([]byte{0xEE}, 8)...)
	want = append(want, 0x01, 0x01)
	assert.Equal(t, want, got, "scratch reuse must not leak bytes between rows")
}

func TestWriter_ZeroRows(t *testing.T) {
	testCases := []struct {
		name string
		rows iter.Seq[*row.Row]
	}{
		{"empty slice", slices.Values([]*row.Row{})},
		{"nil source", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "empty.seg")

			writer, err := NewWriter(path, tc.rows)
			require.NoError(t, err)
			defer writer.Close()

			require.NoError(t, writer.WriteRows())
			assert.Equal(t, int64(0), fileSize(t, path))
			assert.Equal(t, Stats{}, writer.Stats())
		})
	}
}

func TestWriter_SecondWriteRowsFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "once.seg")
	rows := int32Rows(t, [2]int32{1, 2}, [2]int32{3, 4})

	calls := 0
	source := func(yield func(*row.Row) bool) {
		calls++
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}

	writer, err := NewWriter(path, source)
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.WriteRows())
	size := fileSize(t, path)
	assert.Equal(t, int64(16), size)

	for i := 0; i < 3; i++ {
		err = writer.WriteRows()
		assert.ErrorIs(t, err, ErrAlreadyConsumed)
		assert.False(t, errors.Is(err, ErrSerialization))
	}

	assert.Equal(t, 1, calls, "row source iterated once")
	assert.Equal(t, size, fileSize(t, path), "no additional I/O")
	assert.Equal(t, Stats{Rows: 2, Bytes: 16}, writer.Stats())
}

func TestWriter_ReentrantSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reentrant.seg")
	rows := int32Rows(t, [2]int32{1, 2}, [2]int32{3, 4}, [2]int32{5, 6})

	var (
		writer    *Writer[*row.Row]
		nestedErr error
		seen      []Stats
		states    []State
	)
	source := func(yield func(*row.Row) bool) {
		nestedErr = writer.WriteRows()
		for _, r := range rows {
			seen = append(seen, writer.Stats())
			states = append(states, writer.State())
			if !yield(r) {
				return
			}
		}
	}

	writer, err := NewWriter(path, source)
	require.NoError(t, err)
	defer writer.Close()

	done := make(chan error, 1)
	go func() { done <- writer.WriteRows() }()

	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WriteRows did not return while the source called back into the writer")
	}

	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrAlreadyConsumed)
	assert.Equal(t, []Stats{{0, 0}, {1, 8}, {2, 16}}, seen)
	assert.Equal(t, []State{StateConsumed, StateConsumed, StateConsumed}, states)
	assert.Equal(t, Stats{Rows: 3, Bytes: 24}, writer.Stats())
	assert.Equal(t, int64(24), fileSize(t, path))
}

func TestWriter_ConsumedAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.seg")
	source := slices.Values([]codec.Marshaler{lyingMarshaler{size: 1, payload: []byte{1, 2}}})

	writer, err := NewWriter(path, source)
	require.NoError(t, err)
	defer writer.Close()

	require.ErrorIs(t, writer.WriteRows(), ErrSerialization)
	assert.ErrorIs(t, writer.WriteRows(), ErrAlreadyConsumed)
}

func TestWriter_TruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.seg")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 100), 0600))

	writer, err := NewWriter(path, slices.Values(int32Rows(t, [2]int32{7, 8})))
	require.NoError(t, err)
	assert.Equal(t, int64(0), fileSize(t, path), "truncated on create")

	require.NoError(t, writer.WriteRows())
	require.NoError(t, writer.Close())
	assert.Equal(t, int64(8), fileSize(t, path))
}

func TestNewWriter_MissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "part1.seg")

	writer, err := NewWriter(path, slices.Values(int32Rows(t, [2]int32{1, 2})))
	assert.Nil(t, writer)
	require.ErrorIs(t, err, ErrCreate)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var createErr *CreateError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, path, createErr.Path)

	assert.NoFileExists(t, path)
	assert.NoDirExists(t, filepath.Dir(path), "parent directories are never created")
}

func TestNewWriter_PathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWriter(dir, slices.Values([]*row.Row{}))
	assert.ErrorIs(t, err, ErrCreate)
}

func TestWriter_UnderReportedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lying.seg")
	source := slices.Values([]codec.Marshaler{
		lyingMarshaler{size: 2, payload: []byte{0xA1, 0xA2}},
		lyingMarshaler{size: 3, payload: []byte{0xB1, 0xB2, 0xB3, 0xB4}},
		lyingMarshaler{size: 1, payload: []byte{0xC1}},
	})

	writer, err := NewWriter(path, source)
	require.NoError(t, err)
	defer writer.Close()

	err = writer.WriteRows()
	require.ErrorIs(t, err, ErrSerialization)
	assert.ErrorIs(t, err, codec.ErrBufferTooSmall)
	assert.False(t, errors.Is(err, ErrIO))

	var serErr *SerializeError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, 1, serErr.Row)
	assert.Equal(t, 3, serErr.Size)
	assert.Equal(t, path, serErr.Path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA1, 0xA2}, got, "rows before the failure stay, later rows are never written")
	assert.Equal(t, Stats{Rows: 1, Bytes: 2}, writer.Stats())
}

func TestWriter_NegativeSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "negative.seg")

	writer, err := NewWriter(path, slices.Values([]codec.Marshaler{lyingMarshaler{size: -4}}))
	require.NoError(t, err)
	defer writer.Close()

	err = writer.WriteRows()
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestWriter_IOFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.seg")

	writer, err := NewWriter(path, slices.Values(int32Rows(t, [2]int32{1, 2}, [2]int32{3, 4})))
	require.NoError(t, err)

	// Releasing the file first makes the first flush fail.
	require.NoError(t, writer.Close())

	err = writer.WriteRows()
	require.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.False(t, errors.Is(err, ErrSerialization))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, 0, ioErr.Row)
	assert.Equal(t, "flush", ioErr.Op)

	assert.Equal(t, int64(0), fileSize(t, path))
	assert.ErrorIs(t, writer.WriteRows(), ErrAlreadyConsumed)
}

func TestWriter_Sync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.seg")

	writer, err := NewWriter(path, slices.Values(int32Rows(t, [2]int32{1, 2}, [2]int32{3, 4})),
		WithSync(true), WithBufferSize(16))
	require.NoError(t, err)

	require.NoError(t, writer.WriteRows())
	require.NoError(t, writer.Close())
	assert.Equal(t, int64(16), fileSize(t, path))
}

func TestWriter_RowsLargerThanBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.seg")

	b := row.NewBuilder(64)
	for i := 0; i < 64; i++ {
		b.Add(row.Uint64(uint64(i)))
	}
	r, err := b.Build()
	require.NoError(t, err)

	writer, err := NewWriter(path, slices.Values([]*row.Row{r, r}), WithBufferSize(16))
	require.NoError(t, err)
	require.NoError(t, writer.WriteRows())
	require.NoError(t, writer.Close())

	assert.Equal(t, int64(2*64*8), fileSize(t, path))
}

func TestWriter_CloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.seg")

	writer, err := NewWriter(path, slices.Values([]*row.Row{}))
	require.NoError(t, err)

	assert.NoError(t, writer.Close())
	assert.NoError(t, writer.Close())
}

func TestWriter_Logging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := filepath.Join(t.TempDir(), "logged.seg")
	writer, err := NewWriter(path, slices.Values([]codec.Marshaler{lyingMarshaler{size: 0, payload: []byte{1}}}),
		WithLogger(logger))
	require.NoError(t, err)
	defer writer.Close()

	require.Error(t, writer.WriteRows())

	out := logs.String()
	assert.Contains(t, out, `"msg":"segment opened"`)
	assert.Contains(t, out, `"msg":"segment write aborted"`)
	assert.Contains(t, out, `"kind":"serialization"`)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "consumed", StateConsumed.String())
	assert.Equal(t, "state(7)", State(7).String())
}
