package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skimdata/skim"
)

var headRows int

var headCmd = &cobra.Command{
	Use:   "head <file>",
	Short: "Print the first rows of a file",
	Long:  "Decode a file and print the first rows as an aligned table",
	Args:  cobra.ExactArgs(1),
	RunE:  runHead,
}

func init() {
	headCmd.Flags().IntVarP(&headRows, "rows", "n", 10, "Number of rows to print")
}

func runHead(cmd *cobra.Command, args []string) error {
	r, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if !flagNoHeader {
		names := r.ColumnNames()
		fmt.Fprintln(w, strings.Join(names, "\t"))
		dashes := make([]string, len(names))
		for i, name := range names {
			dashes[i] = strings.Repeat("-", len(name))
		}
		fmt.Fprintln(w, strings.Join(dashes, "\t"))
	}
	if headRows <= 0 {
		return nil
	}

	printed := 0
	r.ForEachUntil(func(fields []skim.Field) bool {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = f.String()
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
		printed++
		return printed < headRows
	})
	return nil
}
