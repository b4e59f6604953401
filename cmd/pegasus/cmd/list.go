package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/pegasus/pkg/catalog"
	"github.com/ssargent/pegasus/pkg/segment"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded segments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.OpenCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List()
		if err != nil {
			return err
		}
		return printEntries(cmd.OutOrStdout(), entries)
	},
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id|path>",
	Short: "Show one recorded segment as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := segment.ParseFileName(args[0])
		if err != nil {
			return err
		}

		cat, err := container.OpenCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		entry, err := cat.Get(id)
		if err != nil {
			return err
		}
		return printEntryJSON(cmd.OutOrStdout(), entry)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

// printEntries displays entries in table format
func printEntries(out io.Writer, entries []catalog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No segments recorded.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tROWS\tBYTES\tSCHEMA\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.CreatedAt.Format(time.RFC3339), e.Rows, e.Bytes, e.Schema, e.Path)
	}
	return w.Flush()
}

// printEntryJSON displays a single entry as indented JSON
func printEntryJSON(out io.Writer, entry *catalog.Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
