package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var ingestSideTable string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.jsonl]",
	Short: "Index pre-chunked documents",
	Long: `Reads JSON Lines records of the form

  {"page_content": "...", "metadata": {"source": "...", "chunk_type": "text|table|picture", ...}}

Text and table records are embedded and indexed. Table and picture records
are also added to the side table used to resolve references. Use "-" to
read from stdin.

A side table can also be loaded on its own from CSV with --side-table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSideTable, "side-table", "", "CSV file of side-table rows to load")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestSideTable == "" {
		return errors.New("nothing to ingest: pass a JSONL file or --side-table")
	}

	r, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if r.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	if ingestSideTable != "" {
		f, err := os.Open(ingestSideTable)
		if err != nil {
			return fmt.Errorf("failed to open side table: %w", err)
		}
		n, err := r.Ingest.LoadSideTable(cmd.Context(), f)
		f.Close()
		if err != nil {
			return err
		}
		cmd.Printf("Loaded %d side-table rows from %s\n", n, ingestSideTable)
	}

	if len(args) == 0 {
		return nil
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	stats, err := r.Ingest.Ingest(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("ingest failed after %d records: %w", stats.Records, err)
	}

	cmd.Printf("Ingested %d records\n", stats.Records)
	cmd.Printf("  Indexed chunks: %d\n", stats.Chunks)
	cmd.Printf("  Tables:         %d\n", stats.Tables)
	cmd.Printf("  Pictures:       %d\n", stats.Pictures)
	if stats.Skipped > 0 {
		cmd.Printf("  Skipped (empty): %d\n", stats.Skipped)
	}
	return nil
}
