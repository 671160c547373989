package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skimdata/skim/pkg/explore"
)

var exploreMaxRows int

var exploreCmd = &cobra.Command{
	Use:   "explore <file>",
	Short: "Browse a file interactively",
	Long:  "Open a file in an interactive terminal UI with sortable rows, per-row detail, and column statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplore,
}

func init() {
	exploreCmd.Flags().IntVar(&exploreMaxRows, "max-rows", explore.DefaultMaxRows, "Maximum rows to load")
}

func runExplore(cmd *cobra.Command, args []string) error {
	path := args[0]

	delim, err := inputDelim(path)
	if err != nil {
		return err
	}

	model, err := explore.New(path, explore.Options{
		Delim:    delim,
		NoHeader: flagNoHeader,
		MaxRows:  exploreMaxRows,
	})
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explore TUI: %w", err)
	}
	return nil
}
