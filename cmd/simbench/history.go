// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"simbench-cli/internal/config"
	"simbench-cli/internal/history"
	"simbench-cli/internal/issue"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyKeep  int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded comparison runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE:  runHistoryList,
	}

	historyPruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs",
		RunE:  runHistoryPrune,
	}
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max entries to show (0 shows all)")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 50, "number of most recent runs to keep")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

// openHistory opens the configured run-history database.
func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath(appConfig)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(path)
	if err != nil {
		renderIssue(issue.HistoryUnavailableId)
		return nil, issue.WrapWithContext(err, "open run history", path)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return issue.WrapWithOperation(err, "list run history")
	}
	if len(entries) == 0 {
		fmt.Println(SubtitleStyle.Render("(no recorded runs)"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tLABEL\tSTATUS\tMATCH\tWITHIN\tOUT\tMISSING\tEXTRA")
	for _, e := range entries {
		status := SuccessStyle.Render(e.Status)
		if e.Status != "pass" {
			status = ErrorStyle.Render(e.Status)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Label, status,
			e.Matched, e.Within, e.Out, e.Missing, e.Extra)
	}
	return w.Flush()
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyKeep < 0 {
		return fmt.Errorf("--keep must be >= 0, got %d", historyKeep)
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Prune(cmd.Context(), historyKeep)
	if err != nil {
		return issue.WrapWithOperation(err, "prune run history")
	}

	fmt.Printf("%s Removed %d run(s), kept the %d most recent\n",
		SuccessStyle.Render("✓"), removed, historyKeep)
	return nil
}
