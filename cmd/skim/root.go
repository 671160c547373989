package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skimdata/skim"
	"github.com/skimdata/skim/pkg/reader"
	"github.com/skimdata/skim/pkg/scan"
	"github.com/skimdata/skim/pkg/source"
)

var (
	flagDelimiter string
	flagTSV       bool
	flagNoHeader  bool
	flagColumns   int
	flagWorkers   int
)

var rootCmd = &cobra.Command{
	Use:   "skim",
	Short: "Skim - high-throughput delimited text toolkit",
	Long: `Skim decodes large CSV and TSV files at memory-bandwidth speed and ships
the rows onward: row counts, column statistics, filtered extracts, Parquet
and Arrow conversion, bulk loads into SQLite or Postgres, and an
interactive explorer.

Files are memory-mapped when possible and decompressed transparently
(gz, bz2, xz, zst, 7z). Pass - as a file argument to read from stdin.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDelimiter, "delimiter", "d", "", "Field delimiter (single byte; default comma, tab for .tsv)")
	rootCmd.PersistentFlags().BoolVar(&flagTSV, "tsv", false, "Use tab as the field delimiter")
	rootCmd.PersistentFlags().BoolVar(&flagNoHeader, "no-header", false, "Treat the first line as data, not column names")
	rootCmd.PersistentFlags().IntVar(&flagColumns, "columns", 0, "Column count (default counted from the first line)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Worker count for parallel decoding (0 = sequential)")

	// Add subcommands
	rootCmd.AddCommand(headCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// compressSuffixes are stripped once before sniffing a path's data extension.
var compressSuffixes = []string{".gz", ".bz2", ".xz", ".zst", ".zstd", ".7z"}

// inputDelim resolves the delimiter for path from the global flags, falling
// back to tab for .tsv inputs and comma otherwise.
func inputDelim(path string) (byte, error) {
	if flagTSV {
		return '\t', nil
	}
	if flagDelimiter != "" {
		if flagDelimiter == "\\t" {
			return '\t', nil
		}
		if len(flagDelimiter) != 1 {
			return 0, fmt.Errorf("delimiter must be a single byte, got %q", flagDelimiter)
		}
		return flagDelimiter[0], nil
	}
	name := strings.ToLower(path)
	for _, suffix := range compressSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	if strings.HasSuffix(name, ".tsv") {
		return '\t', nil
	}
	return ',', nil
}

// openReader opens path with the global decode flags applied, plus any
// command-specific extras. Path - reads all of stdin into memory. Without
// a header the column count comes from --columns or the first line.
func openReader(path string, extra ...skim.Option) (*skim.Reader, error) {
	delim, err := inputDelim(path)
	if err != nil {
		return nil, err
	}
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}

	opts := []skim.Option{
		skim.WithErrorPolicy(skim.ErrorsLine),
		skim.WithNullPolicy(skim.NullStandard),
		skim.WithDelimiter(delim),
	}
	if flagNoHeader {
		opts = append(opts, skim.WithoutHeader())
		if flagColumns <= 0 {
			opts = append(opts, skim.WithColumns(countLine(src.Data(), delim)))
		}
	}
	if flagColumns > 0 {
		opts = append(opts, skim.WithColumns(flagColumns))
	}
	if flagWorkers > 0 {
		opts = append(opts, skim.WithWorkers(flagWorkers))
	}
	opts = append(opts, extra...)

	r, err := skim.FromSource(src, opts...)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return r, nil
}

// openSource maps path into memory without decoding it. Path - reads stdin.
func openSource(path string) (*source.Source, error) {
	if path == "-" {
		return source.FromReader(os.Stdin)
	}
	return source.Open(path)
}

// decodeOptions builds decoder options for data from the global flags. The
// column count comes from --columns or, failing that, the first line.
func decodeOptions(data []byte, delim byte) reader.Options {
	cols := flagColumns
	if cols <= 0 {
		cols = countLine(data, delim)
	}
	return reader.Options{
		Delim:   delim,
		Columns: cols,
		Header:  !flagNoHeader,
		Errors:  reader.ErrorsLine,
		Nulls:   reader.NullStandard,
	}
}

// countLine counts the fields of the first line of data.
func countLine(data []byte, delim byte) int {
	n := 1
	pos := 0
	for {
		pos += scan.IndexTerminator(data[pos:], delim)
		if pos >= len(data) || data[pos] != delim {
			return n
		}
		n++
		pos++
	}
}

// baseName strips the directory, compression suffix, and data extension
// from path, leaving a bare name suitable for derived outputs.
func baseName(path string) string {
	name := filepath.Base(path)
	lower := strings.ToLower(name)
	for _, suffix := range compressSuffixes {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			lower = lower[:len(lower)-len(suffix)]
			break
		}
	}
	for _, suffix := range []string{".csv", ".tsv"} {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
