// Package catalog records the segments that have been written.
//
// Segment files carry no framing, so the row layout needed to read one back
// lives here, keyed by segment id, in a pebble database.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/pegasus/pkg/row"
)

var (
	ErrNotFound     = errors.New("catalog: segment not found")
	ErrInvalidEntry = errors.New("catalog: invalid entry")
)

var (
	segmentPrefix = []byte("segment/")
	segmentEnd    = []byte("segment0")
)

// Entry describes one segment file.
type Entry struct {
	ID        ksuid.KSUID `json:"id"`
	Path      string      `json:"path"`
	Schema    row.Schema  `json:"schema"`
	RowWidth  int         `json:"row_width"`
	Rows      int         `json:"rows"`
	Bytes     int64       `json:"bytes"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate checks that the entry describes a decodable segment.
func (e *Entry) Validate() error {
	switch {
	case e.ID == ksuid.Nil:
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	case len(e.Schema) == 0:
		return fmt.Errorf("%w: empty schema", ErrInvalidEntry)
	case e.RowWidth != e.Schema.Width():
		return fmt.Errorf("%w: row width %d does not match schema width %d", ErrInvalidEntry, e.RowWidth, e.Schema.Width())
	case e.Bytes != int64(e.Rows)*int64(e.RowWidth):
		return fmt.Errorf("%w: %d rows of %d bytes is not %d bytes", ErrInvalidEntry, e.Rows, e.RowWidth, e.Bytes)
	}
	return nil
}

// Catalog is a pebble-backed registry of segment entries.
type Catalog struct {
	db *pebble.DB
}

// Open opens or creates the catalog stored in dir.
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", dir, err)
	}
	return &Catalog{db: db}, nil
}

func segmentKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, segmentPrefix...), id.Bytes()...)
}

// Put records e, replacing any entry with the same id.
func (c *Catalog) Put(e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("catalog: encode entry: %w", err)
	}
	return c.db.Set(segmentKey(e.ID), data, pebble.Sync)
}

// Get returns the entry for id.
func (c *Catalog) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := c.db.Get(segmentKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("catalog: decode entry %s: %w", id, err)
	}
	return &e, nil
}

// List returns every entry, oldest first.
func (c *Catalog) List() ([]Entry, error) {
	it, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: segmentPrefix,
		UpperBound: segmentEnd,
	})
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for valid := it.First(); valid; valid = it.Next() {
		var e Entry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			_ = it.Close()
			return nil, fmt.Errorf("catalog: decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes the entry for id. Deleting a missing entry is not an error.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	return c.db.Delete(segmentKey(id), pebble.Sync)
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
