// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"simbench-cli/internal/config"
	"simbench-cli/internal/history"
	"simbench-cli/internal/issue"
	"simbench-cli/internal/results"
	"simbench-cli/internal/watch"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	compareObserved string
	compareRef      string
	compareRules    string
	compareMarkdown bool
	compareRecord   string
	compareWatch    bool
	compareDebounce time.Duration

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Compare a result table against a stored reference",
		Long: `Compare an observed result table against a stored reference table.

Metrics are matched by (case, metric) key. Numeric differences are judged
against per-metric tolerance rules; metrics without a matching rule must
match exactly. Missing or out-of-tolerance metrics fail the comparison.

Exit codes: 0 when the comparison passes, 1 on a regression, 2 when the
comparison could not be evaluated at all.`,
		RunE: runCompare,
	}
)

func init() {
	compareCmd.Flags().StringVarP(&compareObserved, "observed", "o", "", "observed result table (required)")
	compareCmd.Flags().StringVarP(&compareRef, "reference", "r", "", "reference result table (required)")
	compareCmd.Flags().StringVarP(&compareRules, "rules", "t", "", "tolerance rule file (default from config)")
	compareCmd.Flags().BoolVar(&compareMarkdown, "markdown", false, "render the report as markdown")
	compareCmd.Flags().StringVar(&compareRecord, "record", "", "record the outcome in run history under this label")
	compareCmd.Flags().BoolVarP(&compareWatch, "watch", "w", false, "re-run the comparison when inputs change")
	compareCmd.Flags().DurationVar(&compareDebounce, "debounce", 0, "quiet period before a watched re-run")
	_ = compareCmd.MarkFlagRequired("observed")
	_ = compareCmd.MarkFlagRequired("reference")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	rulesPath := compareRules
	if rulesPath == "" {
		rulesPath = string(appConfig.ToleranceRules)
	}

	if compareWatch {
		return runCompareWatch(cmd.Context(), rulesPath)
	}

	report, err := compareOnce(cmd.Context(), rulesPath)
	if err != nil {
		return err
	}
	if !report.Pass() {
		c := report.Counts()
		return &ExitError{
			Code: ExitRegression,
			Err:  fmt.Errorf("comparison failed: %d out of tolerance, %d missing", c.Out, c.Missing),
		}
	}
	return nil
}

// compareOnce loads both tables and the rules, compares them, renders the
// report, and records the outcome when requested.
func compareOnce(ctx context.Context, rulesPath string) (*results.Report, error) {
	observed, err := results.Load(compareObserved)
	if err != nil {
		return nil, &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "load observed table", compareObserved)}
	}

	reference, err := results.Load(compareRef)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			renderIssue(issue.ReferenceNotFoundId)
		}
		return nil, &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "load reference table", compareRef)}
	}

	var rules *results.Rules
	if rulesPath != "" {
		rules, err = results.LoadRules(rulesPath)
		if err != nil {
			renderIssue(issue.ToleranceConfigErrorId)
			return nil, &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "load tolerance rules", rulesPath)}
		}
	}

	report, err := results.Compare(observed, reference, rules)
	if err != nil {
		return nil, &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithOperation(err, "compare result tables")}
	}

	if compareMarkdown {
		rendered, renderErr := glamour.Render(report.Markdown(), markdownStyle())
		if renderErr != nil {
			// Unstyled markdown is still a valid report.
			rendered = report.Markdown()
		}
		fmt.Print(rendered)
	} else if err := report.WriteText(os.Stdout); err != nil {
		return nil, err
	}

	if compareRecord != "" {
		recordOutcome(ctx, compareRecord, report)
	}

	return report, nil
}

// runCompareWatch re-runs the comparison whenever the observed table, the
// reference table, or the rule file changes. Regressions are reported but do
// not stop the watcher; only Ctrl+C (context cancellation) ends it.
func runCompareWatch(ctx context.Context, rulesPath string) error {
	paths := []string{compareObserved, compareRef}
	if rulesPath != "" {
		paths = append(paths, rulesPath)
	}

	rerun := func(ctx context.Context, _ []string) error {
		report, err := compareOnce(ctx, rulesPath)
		if err != nil {
			return err
		}
		if !report.Pass() {
			c := report.Counts()
			logger.Warn("comparison failed", "out", c.Out, "missing", c.Missing)
		}
		return nil
	}

	// One comparison up front so the terminal shows a result before the
	// first change arrives. Setup problems (missing files, bad rules) are
	// fatal here; once watching, they only log.
	if err := rerun(ctx, paths); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Paths:    paths,
		Debounce: compareDebounce,
		OnChange: rerun,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("watching for changes", "paths", w.Paths())
	return w.Run(ctx)
}

// recordOutcome appends the report to the run-history database. History
// trouble never changes the comparison verdict; it only warns.
func recordOutcome(ctx context.Context, label string, report *results.Report) {
	path, err := config.HistoryPath(appConfig)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		renderIssue(issue.HistoryUnavailableId)
		logger.Warn("run history unavailable", "path", path, "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	entry, err := store.Append(ctx, label, report)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("recorded run", "id", entry.ID, "label", entry.Label, "status", entry.Status)
}

// markdownStyle maps the configured color scheme to a glamour style name.
func markdownStyle() string {
	switch appConfig.UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	default:
		return "dark"
	}
}
