package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/skimdata/skim"
	"github.com/skimdata/skim/pkg/walk"
)

var countCmd = &cobra.Command{
	Use:   "count <path>...",
	Short: "Count data rows",
	Long:  "Count data rows in files; directories are searched for delimited files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCount,
}

func runCount(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Directory walks run the callback concurrently.
	var mu sync.Mutex
	var total int64
	files := 0

	countOne := func(path string) error {
		r, err := openReader(path)
		if err != nil {
			return err
		}
		defer r.Close()

		var n int
		if flagWorkers > 0 {
			n = r.ForEachParallel(func([]skim.Field) {})
		} else {
			n = r.ForEachRaw(func(starts, ends []int) {})
		}

		mu.Lock()
		total += int64(n)
		files++
		fmt.Fprintf(out, "%s: %s\n", path, humanize.Comma(int64(n)))
		mu.Unlock()
		return nil
	}

	ctx := context.Background()
	for _, path := range args {
		if path == "-" {
			if err := countOne(path); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := countOne(path); err != nil {
				return err
			}
			continue
		}
		err = walk.Walk(ctx, path, walk.Options{Workers: flagWorkers}, func(ctx context.Context, p string) error {
			return countOne(p)
		})
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
	}

	if files > 1 {
		fmt.Fprintf(out, "Total: %s rows across %d files\n", humanize.Comma(total), files)
	}
	return nil
}
