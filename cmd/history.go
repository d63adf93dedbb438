package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/gomacro/internal/history"
	"github.com/itsmostafa/gomacro/internal/output"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cfg.HistoryPath()
		if err != nil {
			return err
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		output.FormatHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
