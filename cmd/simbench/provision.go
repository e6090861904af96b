// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"simbench-cli/internal/config"
	"simbench-cli/internal/issue"
	"simbench-cli/internal/manifest"
	"simbench-cli/internal/provision"

	"github.com/spf13/cobra"
)

var (
	provisionManifestPath string
	provisionDest         string
	provisionOverwrite    bool
	provisionVerify       bool
	provisionParallelism  int

	provisionCmd = &cobra.Command{
		Use:   "provision",
		Short: "Materialize manifest inputs into the run directory",
		Long: `Materialize the input files named in the manifest into the run directory.

Each item is symlinked, copied, or downloaded according to its strategy,
and verified against its declared checksum when one is present. Items
that are already in place and verified are skipped, so re-running after
a partial failure only touches the unfinished items.`,
		RunE: runProvision,
	}
)

func init() {
	provisionCmd.Flags().StringVarP(&provisionManifestPath, "manifest", "m", "", "input manifest (default from config)")
	provisionCmd.Flags().StringVarP(&provisionDest, "dest", "d", "", "destination root (default from config)")
	provisionCmd.Flags().BoolVar(&provisionOverwrite, "overwrite", false, "replace local files whose checksum does not match")
	provisionCmd.Flags().BoolVar(&provisionVerify, "verify-existing", false, "re-checksum files that already exist")
	provisionCmd.Flags().IntVarP(&provisionParallelism, "parallelism", "j", -1, "max concurrent items (default from config; values below 1 mean sequential)")
}

func runProvision(cmd *cobra.Command, _ []string) error {
	manifestPath := provisionManifestPath
	if manifestPath == "" {
		manifestPath = string(appConfig.Manifest)
	}
	destRoot := provisionDest
	if destRoot == "" {
		destRoot = string(appConfig.DestinationRoot)
	}
	parallelism := provisionParallelism
	if parallelism < 0 {
		parallelism = appConfig.Parallelism
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		id := issue.ManifestParseErrorId
		if errors.Is(err, fs.ErrNotExist) {
			id = issue.ManifestNotFoundId
		}
		renderIssue(id)
		return &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "load input manifest", manifestPath)}
	}

	timeout, err := appConfig.DownloadTimeoutDuration()
	if err != nil {
		return &ExitError{Code: ExitNotEvaluable, Err: err}
	}

	logger.Debug("provisioning", "manifest", manifestPath, "dest", destRoot, "items", len(m.Inputs))

	p := provision.New(logger, nil)
	states, err := p.Provision(cmd.Context(), m, destRoot, provision.Options{
		Overwrite:      provisionOverwrite,
		VerifyExisting: provisionVerify,
		Parallelism:    parallelism,
		Timeout:        timeout,
	})
	if err != nil {
		renderIssue(issue.ProvisionFailedId)
		return &ExitError{Code: ExitNotEvaluable, Err: issue.WrapWithContext(err, "provision inputs", manifestPath)}
	}

	for _, st := range states {
		printItemState(st)
	}

	verified, stale, failed, pending := provision.Summary(states)
	fmt.Printf("\n%s %d verified, %d stale, %d failed, %d pending\n",
		SubtitleStyle.Render("Summary:"), verified, stale, failed, pending)

	if failed > 0 || stale > 0 || pending > 0 {
		renderIssue(issue.ProvisionFailedId)
		return &ExitError{
			Code: ExitNotEvaluable,
			Err:  fmt.Errorf("%d of %d items not verified", len(states)-verified, len(states)),
		}
	}
	return nil
}

// printItemState writes one status line per manifest item.
func printItemState(st provision.ItemState) {
	var marker string
	switch st.Status {
	case provision.StatusVerified:
		marker = SuccessStyle.Render("✓")
	case provision.StatusStale:
		marker = WarningStyle.Render("~")
	case provision.StatusFailed:
		marker = ErrorStyle.Render("✗")
	default:
		marker = SubtitleStyle.Render("·")
	}

	line := fmt.Sprintf("%s %s (%s) %s", marker, MetricStyle.Render(st.Name), st.Action, st.LocalPath)
	if st.Err != nil {
		line += " " + ErrorStyle.Render(st.Err.Error())
	}
	fmt.Println(line)
}

// renderIssue prints a rendered issue card to stderr, matching the terminal
// color scheme from config.
func renderIssue(id issue.Id) {
	scheme := string(appConfig.UI.ColorScheme)
	if scheme == string(config.ColorSchemeAuto) {
		scheme = "dark"
	}
	rendered, err := issue.Get(id).Render(scheme)
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}
