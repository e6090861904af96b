// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"simbench-cli/internal/issue"
	"simbench-cli/internal/profile"

	"github.com/spf13/cobra"
)

var (
	profileTableOut string

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Inspect profiling dumps from instrumented runs",
		Long: `Inspect per-rank profiling dumps produced by an instrumented run.

A dump holds one call-tree section per MPI rank. Malformed lines never
abort a parse; they are collected as diagnostics and reported alongside
the usable part of the tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	profileParseCmd = &cobra.Command{
		Use:   "parse <dump>...",
		Short: "Parse dumps and show the call forest",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProfileParse,
	}

	profileSummaryCmd = &cobra.Command{
		Use:   "summary <dump>...",
		Short: "Aggregate routine statistics across ranks",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProfileSummary,
	}

	profileTableCmd = &cobra.Command{
		Use:   "table <dump>...",
		Short: "Condense dumps into a result table for comparison",
		Long: `Condense profiling dumps into a result table.

The table carries per-routine self-time statistics and call counts, so a
run's performance profile can be compared against a reference with the
same tolerance machinery as numerical results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProfileTable,
	}
)

func init() {
	profileTableCmd.Flags().StringVarP(&profileTableOut, "output", "o", "", "write the table to a file instead of stdout")

	profileCmd.AddCommand(profileParseCmd)
	profileCmd.AddCommand(profileSummaryCmd)
	profileCmd.AddCommand(profileTableCmd)
}

// parseDumps parses the given dump files and reports diagnostics, wrapping
// unreadable streams in the not-evaluable exit contract.
func parseDumps(paths []string) (*profile.Tree, error) {
	tree, diags, err := profile.ParseFiles(paths)
	if err != nil {
		renderIssue(issue.ProfileParseErrorId)
		return nil, &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "parse profile dump", strings.Join(paths, ", "))}
	}

	if len(diags) > 0 {
		logger.Warn("profile dump has malformed lines", "count", len(diags))
		if verbose {
			for _, d := range diags {
				logger.Debug("diagnostic", "line", d.Line, "reason", d.Reason, "raw", d.Raw)
			}
		}
	}
	return tree, nil
}

func runProfileParse(_ *cobra.Command, args []string) error {
	tree, err := parseDumps(args)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", SubtitleStyle.Render("Program:"), MetricStyle.Render(tree.Program))
	fmt.Printf("%s %d tasks, %d threads\n\n", SubtitleStyle.Render("Layout: "), tree.Procs, tree.Threads)

	for i := range tree.Roots {
		root := &tree.Roots[i]
		fmt.Printf("%s rank %d, wall %.3fs, %d routines\n",
			TitleStyle.Render("#"), root.Rank, root.Walltime, root.Len())
		root.Walk(func(id, depth int) {
			rec := root.Record(id)
			fmt.Printf("  %s%s self=%.3fs total=%.3fs calls=%d\n",
				strings.Repeat("  ", depth), MetricStyle.Render(rec.Name), rec.Self, rec.Total, rec.Calls)
		})
		fmt.Println()
	}
	return nil
}

func runProfileSummary(_ *cobra.Command, args []string) error {
	tree, err := parseDumps(args)
	if err != nil {
		return err
	}
	return tree.Summary(os.Stdout)
}

func runProfileTable(_ *cobra.Command, args []string) error {
	tree, err := parseDumps(args)
	if err != nil {
		return err
	}

	table, err := tree.Table()
	if err != nil {
		return &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithOperation(err, "build profile result table")}
	}

	if profileTableOut == "" {
		return table.Write(os.Stdout)
	}
	if err := table.Save(profileTableOut); err != nil {
		return err
	}
	logger.Info("wrote profile table", "path", profileTableOut, "rows", table.Len())
	return nil
}
