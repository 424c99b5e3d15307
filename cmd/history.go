package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"panopto-urls/internal/history"
	"panopto-urls/internal/output"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded extraction runs",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the video list of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of runs to list")
	historyShowCmd.Flags().BoolVarP(&flagXargs, "output_xargs", "x", false, "Precede each URL with curl -o/-H directives for xargs")
	historyShowCmd.Flags().SetNormalizeFunc(underscoreFlags)
	historyCmd.AddCommand(historyShowCmd)
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cmd.Context())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), flagLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries found.")
		return nil
	}

	for _, line := range history.FormatForDisplay(runs) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func historyShowRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cmd.Context())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	text := output.Format(run.Entries, output.Options{
		Xargs:      cfg.Xargs,
		Cookie:     cfg.Cookie,
		CookieName: cfg.CookieName,
	})
	return output.Write(cmd.OutOrStdout(), text)
}
