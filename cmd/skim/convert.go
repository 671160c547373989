package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/skimdata/skim/pkg/batch"
	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/schema"
)

var (
	convertTo     string
	convertOut    string
	convertSchema string
	convertBatch  int
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a file to Parquet or Arrow",
	Long: `Decode a file and rewrite it as a columnar Parquet or Arrow IPC file.
Column types come from --schema; without one every column is written as a
string.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "parquet", "Output format: parquet, arrow")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output path (default derived from the input name)")
	convertCmd.Flags().StringVar(&convertSchema, "schema", "", "Path to YAML schema declaring column types")
	convertCmd.Flags().IntVar(&convertBatch, "batch", batch.DefaultBatchRows, "Rows per record batch")
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]

	if convertTo != "parquet" && convertTo != "arrow" {
		return fmt.Errorf("unknown conversion target: %s", convertTo)
	}

	src, err := openSource(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()
	data := src.Data()

	delim, err := inputDelim(path)
	if err != nil {
		return err
	}
	ropts := decodeOptions(data, delim)

	sch, err := resolveSchema(convertSchema, data, ropts)
	if err != nil {
		return err
	}
	if sch.Len() != ropts.Columns {
		return fmt.Errorf("schema has %d columns, %s has %d", sch.Len(), path, ropts.Columns)
	}

	out := convertOut
	if out == "" {
		if path == "-" {
			return fmt.Errorf("--out is required when reading stdin")
		}
		out = defaultOut(path, "."+convertTo)
	}

	fh, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	var n int
	wopts := batch.WriteOptions{Reader: ropts, BatchRows: convertBatch}
	switch convertTo {
	case "parquet":
		n, err = batch.WriteParquet(fh, data, sch, wopts)
	case "arrow":
		n, err = batch.WriteIPC(fh, data, sch, wopts)
	}
	cerr := fh.Close()
	if err != nil {
		return fmt.Errorf("converting %s: %w", path, err)
	}
	if cerr != nil {
		return fmt.Errorf("closing %s: %w", out, cerr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows to %s\n", humanize.Comma(int64(n)), out)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveSchema loads the schema at schemaPath, or derives an all-string
// schema from the header (positional names when there is none).
func resolveSchema(schemaPath string, data []byte, ropts reader.Options) (*schema.Schema, error) {
	if schemaPath != "" {
		sch, err := schema.LoadFile(schemaPath)
		if err != nil {
			return nil, fmt.Errorf("loading schema: %w", err)
		}
		return sch, nil
	}
	if !ropts.Header {
		return schema.Strings(ropts.Columns), nil
	}
	r, err := reader.New(data, ropts)
	if err != nil {
		return nil, err
	}
	return schema.FromNames(r.ColumnNames()), nil
}

// defaultOut places the derived output next to the input file.
func defaultOut(path, ext string) string {
	return filepath.Join(filepath.Dir(path), baseName(path)+ext)
}
