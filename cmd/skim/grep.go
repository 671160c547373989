package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skimdata/skim/pkg/filter"
)

var (
	grepLiteral bool
	grepCount   bool
)

var grepCmd = &cobra.Command{
	Use:   "grep <pattern> <file>",
	Short: "Print rows matching a pattern",
	Long: `Decode a file and print every data row whose raw bytes match the pattern.
The pattern compiles as a regular expression by default; --literal switches
to exact substring matching. Rows are echoed exactly as they appear in the
input.`,
	Args: cobra.ExactArgs(2),
	RunE: runGrep,
}

func init() {
	grepCmd.Flags().BoolVar(&grepLiteral, "literal", false, "Match the pattern as a literal substring")
	grepCmd.Flags().BoolVarP(&grepCount, "count", "c", false, "Print only the number of matching rows")
}

func runGrep(cmd *cobra.Command, args []string) error {
	pattern, path := args[0], args[1]

	cfg := filter.Config{Pattern: pattern}
	if grepLiteral {
		cfg = filter.Config{Keywords: []string{pattern}}
	}
	f, err := filter.New(cfg)
	if err != nil {
		return fmt.Errorf("compiling pattern: %w", err)
	}
	defer f.Close()

	r, err := openReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	data := r.Data()
	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	matched := 0
	r.ForEachRaw(func(starts, ends []int) {
		row := data[starts[0]:ends[len(ends)-1]]
		if !f.Match(row) {
			return
		}
		matched++
		if grepCount {
			return
		}
		out.Write(row)
		out.WriteByte('\n')
	})

	if grepCount {
		fmt.Fprintf(out, "%d\n", matched)
	}
	return nil
}
