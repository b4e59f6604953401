package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/pegasus/pkg/catalog"
	"github.com/ssargent/pegasus/pkg/di"
	"github.com/ssargent/pegasus/pkg/row"
	"github.com/ssargent/pegasus/pkg/segment"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write CSV rows into a new segment",
	Long: `Read CSV records and write them as rows of a new segment file.

Every record must have one value per schema field. Lines starting with #
are ignored. Without --out the segment is created in the data directory
under a fresh, time-ordered id.

Example:
  printf '13,101\n14,102\n15,103\n' | pegasus write --schema int32,int32`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaFlag, _ := cmd.Flags().GetString("schema")
		input, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("out")

		schema, err := row.ParseSchema(schemaFlag)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if input != "" && input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			in = f
		}

		entry, err := writeSegment(container, schema, in, out)
		if err != nil {
			return err
		}

		cmd.Printf("Wrote %d rows (%d bytes) to %s\n", entry.Rows, entry.Bytes, entry.Path)
		cmd.Printf("Segment id: %s\n", entry.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringP("schema", "s", "", "Comma separated field kinds, e.g. int32,int64,float64 (required)")
	writeCmd.Flags().StringP("input", "i", "-", "CSV input file, - for stdin")
	writeCmd.Flags().StringP("out", "o", "", "Segment path; its directory must exist")
	if err := writeCmd.MarkFlagRequired("schema"); err != nil {
		panic(err)
	}
}

// writeSegment streams CSV records from in into a new segment and records it
// in the catalog. A segment that fails part way is left on disk and is not
// recorded.
func writeSegment(c *di.Container, schema row.Schema, in io.Reader, outPath string) (*catalog.Entry, error) {
	if c == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	cfg := c.GetConfig()
	logger := c.GetLogger()

	var id ksuid.KSUID
	path := outPath
	if path == "" {
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		id, path = segment.NewPath(cfg.DataDir, cfg.Segment.Extension)
	} else {
		id = ksuid.New()
	}

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var parseErr error
	rows := func(yield func(*row.Row) bool) {
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				parseErr = err
				return
			}
			r, err := schema.ParseRow(record)
			if err != nil {
				line, _ := reader.FieldPos(0)
				parseErr = fmt.Errorf("line %d: %w", line, err)
				return
			}
			if !yield(r) {
				return
			}
		}
	}

	w, err := segment.NewWriter(path, rows, c.WriterOptions()...)
	if err != nil {
		return nil, err
	}
	writeErr := w.WriteRows()
	closeErr := w.Close()
	stats := w.Stats()

	if writeErr != nil {
		return nil, writeErr
	}
	if parseErr != nil {
		return nil, fmt.Errorf("invalid input, segment %s left with %d rows: %w", path, stats.Rows, parseErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close segment: %w", closeErr)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	entry := catalog.Entry{
		ID:        id,
		Path:      absPath,
		Schema:    schema,
		RowWidth:  schema.Width(),
		Rows:      stats.Rows,
		Bytes:     stats.Bytes,
		CreatedAt: id.Time().UTC(),
	}

	cat, err := c.OpenCatalog()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Warn("failed to close catalog", "error", err)
		}
	}()
	if err := cat.Put(entry); err != nil {
		return nil, fmt.Errorf("failed to record segment %s: %w", entry.ID, err)
	}

	logger.Info("segment recorded", "id", entry.ID.String(), "path", entry.Path, "rows", entry.Rows, "bytes", entry.Bytes)
	return &entry, nil
}
