package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/skimdata/skim/pkg/schema"
	"github.com/skimdata/skim/pkg/sink"
)

var (
	loadInto       string
	loadTable      string
	loadSchemaPath string
	loadStrict     bool
	loadBatch      int
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Bulk-load a file into a database",
	Long: `Decode a file and load its rows into SQLite or Postgres.

The target is selected by --into: sqlite://path.db?table=name writes a
local SQLite database; any other value is treated as a Postgres connection
string. With --into unset the connection string comes from the SKIM_PG_DSN
environment variable, loaded from .env when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadInto, "into", "", "Load target: sqlite://path.db?table=t or a Postgres DSN")
	loadCmd.Flags().StringVar(&loadTable, "table", "", "Target table (default derived from the file name)")
	loadCmd.Flags().StringVar(&loadSchemaPath, "schema", "", "Path to YAML schema declaring column types")
	loadCmd.Flags().BoolVar(&loadStrict, "strict", false, "Fail on unparseable values instead of loading NULL")
	loadCmd.Flags().IntVar(&loadBatch, "batch", 0, "Commit every N rows (default one transaction)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]

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

	sch, err := resolveSchema(loadSchemaPath, data, ropts)
	if err != nil {
		return err
	}
	if sch.Len() != ropts.Columns {
		return fmt.Errorf("schema has %d columns, %s has %d", sch.Len(), path, ropts.Columns)
	}

	s, desc, err := openSink(context.Background(), path, sch)
	if err != nil {
		return err
	}

	n, err := sink.Load(s, data, sch, sink.LoadOptions{
		Reader: ropts,
		Strict: loadStrict,
		Batch:  loadBatch,
	})
	if err != nil {
		s.Close()
		return fmt.Errorf("loading rows: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing target: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s rows into %s\n", humanize.Comma(int64(n)), desc)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// openSink builds the load target from --into. sqlite:// URLs open a local
// database file; anything else resolves to a Postgres connection string.
// The returned string describes the target for the result line.
func openSink(ctx context.Context, path string, sch *schema.Schema) (sink.Sink, string, error) {
	table := loadTable

	if strings.HasPrefix(loadInto, "sqlite://") {
		rest := strings.TrimPrefix(loadInto, "sqlite://")
		dbPath, query, _ := strings.Cut(rest, "?")
		if dbPath == "" {
			return nil, "", fmt.Errorf("sqlite target needs a path: %s", loadInto)
		}
		if query != "" {
			vals, err := url.ParseQuery(query)
			if err != nil {
				return nil, "", fmt.Errorf("parsing target %s: %w", loadInto, err)
			}
			if t := vals.Get("table"); t != "" {
				table = t
			}
		}
		if table == "" {
			table = tableName(path)
		}
		s, err := sink.NewSQLite(dbPath, table, sch)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", dbPath, err)
		}
		return s, fmt.Sprintf("%s (table %s)", dbPath, table), nil
	}

	dsn, err := sink.ResolveDSN(loadInto)
	if err != nil {
		return nil, "", err
	}
	if table == "" {
		table = tableName(path)
	}
	s, err := sink.NewPostgres(ctx, dsn, table, sch)
	if err != nil {
		return nil, "", err
	}
	return s, fmt.Sprintf("postgres table %s", table), nil
}

// tableName derives a SQL identifier from the input file name.
func tableName(path string) string {
	if path == "-" {
		return "skim"
	}
	name := baseName(path)
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "skim"
	}
	return b.String()
}
