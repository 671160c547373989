package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skimdata/skim"
	"github.com/skimdata/skim/pkg/schema"
)

var (
	statsSchema string
	statsFormat string
	statsColor  string
)

// styles holds color formatters for human-readable stats output
type styles struct {
	name    *color.Color
	typ     *color.Color
	heading *color.Color
	number  *color.Color
}

// newStyles creates color formatters for stats output
// enabled=false respects --color=never and the NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		name:    color.New(color.Bold, color.FgHiWhite),
		typ:     color.New(color.FgHiBlue),
		heading: color.New(color.Bold),
		number:  color.New(color.FgYellow),
	}

	if !enabled {
		s.name.DisableColor()
		s.typ.DisableColor()
		s.heading.DisableColor()
		s.number.DisableColor()
	}

	return s
}

// columnStats accumulates per-column summary figures over one pass.
type columnStats struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Values   int      `json:"values"`
	Nulls    int      `json:"nulls"`
	MinWidth int      `json:"min_width"`
	MaxWidth int      `json:"max_width"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Mean     *float64 `json:"mean,omitempty"`

	numeric bool
	nums    int
	lo      float64
	hi      float64
	sum     float64
}

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Summarize a file column by column",
	Long: `Decode a file once and report per-column value, null, and width counts.
With --schema, numeric columns additionally report min, max, and mean.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsSchema, "schema", "", "Path to YAML schema declaring column types")
	statsCmd.Flags().StringVar(&statsFormat, "format", "human", "Output format: human, json")
	statsCmd.Flags().StringVar(&statsColor, "color", "auto", "Color output: auto, always, never")
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	r, err := openReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var sch *schema.Schema
	if statsSchema != "" {
		sch, err = schema.LoadFile(statsSchema)
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		if sch.Len() != r.Columns() {
			return fmt.Errorf("schema has %d columns, %s has %d", sch.Len(), path, r.Columns())
		}
	}

	cols, rows := collectStats(r, sch)

	switch statsFormat {
	case "json":
		return outputStatsJSON(cmd, cols)
	case "human":
		return outputStatsHuman(cmd, path, rows, cols)
	default:
		return fmt.Errorf("unknown output format: %s", statsFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// collectStats walks every row once, feeding each field into its column
// accumulator. Column names and numeric typing come from sch when given.
func collectStats(r *skim.Reader, sch *schema.Schema) ([]*columnStats, int) {
	cols := make([]*columnStats, r.Columns())
	for i := range cols {
		c := &columnStats{Type: string(schema.TypeString)}
		if sch != nil {
			c.Name = sch.Columns[i].Name
			c.Type = string(sch.Columns[i].Type)
			switch sch.Columns[i].Type {
			case schema.TypeInt, schema.TypeUint, schema.TypeFloat:
				c.numeric = true
			}
		} else {
			c.Name = r.ColumnName(i)
			if c.Name == "" {
				c.Name = fmt.Sprintf("c%d", i)
			}
		}
		cols[i] = c
	}

	nulls := r.NullPolicy()
	rows := r.ForEach(func(fields []skim.Field) {
		for i, f := range fields {
			cols[i].update(f, nulls)
		}
	})

	for _, c := range cols {
		c.finalize()
	}
	return cols, rows
}

func (c *columnStats) update(f skim.Field, nulls skim.NullPolicy) {
	if f.IsNull(nulls) {
		c.Nulls++
		return
	}
	w := f.Len()
	if c.Values == 0 || w < c.MinWidth {
		c.MinWidth = w
	}
	if w > c.MaxWidth {
		c.MaxWidth = w
	}
	if c.numeric {
		if v, err := f.Float(); err == nil {
			if c.nums == 0 || v < c.lo {
				c.lo = v
			}
			if c.nums == 0 || v > c.hi {
				c.hi = v
			}
			c.sum += v
			c.nums++
		}
	}
	c.Values++
}

// finalize fills the exported numeric fields once the pass is complete.
func (c *columnStats) finalize() {
	if !c.numeric || c.nums == 0 {
		return
	}
	lo, hi := c.lo, c.hi
	mean := c.sum / float64(c.nums)
	c.Min, c.Max, c.Mean = &lo, &hi, &mean
}

// formatStat renders integral values without a decimal point.
func formatStat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func outputStatsJSON(cmd *cobra.Command, cols []*columnStats) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(cols)
}

func outputStatsHuman(cmd *cobra.Command, path string, rows int, cols []*columnStats) error {
	out := cmd.OutOrStdout()

	// Determine if colors should be enabled based on --color flag
	switch statsColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		// Check if stdout is a TTY and NO_COLOR is not set
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		} else {
			color.NoColor = false
		}
	}
	s := newStyles(!color.NoColor)

	fmt.Fprintf(out, "%s (%s rows, %d columns)\n\n",
		s.heading.Sprint(path), humanize.Comma(int64(rows)), len(cols))

	for _, c := range cols {
		fmt.Fprintf(out, "%s (%s)\n", s.name.Sprint(c.Name), s.typ.Sprint(c.Type))
		fmt.Fprintf(out, "  %s %s  %s %s",
			s.heading.Sprint("values"), humanize.Comma(int64(c.Values)),
			s.heading.Sprint("nulls"), humanize.Comma(int64(c.Nulls)))
		if c.Values > 0 {
			fmt.Fprintf(out, "  %s %d..%d", s.heading.Sprint("width"), c.MinWidth, c.MaxWidth)
		}
		fmt.Fprintf(out, "\n")
		if c.Min != nil {
			fmt.Fprintf(out, "  %s %s  %s %s  %s %s\n",
				s.heading.Sprint("min"), s.number.Sprint(formatStat(*c.Min)),
				s.heading.Sprint("max"), s.number.Sprint(formatStat(*c.Max)),
				s.heading.Sprint("mean"), s.number.Sprint(formatStat(*c.Mean)))
		}
		fmt.Fprintln(out)
	}
	return nil
}
