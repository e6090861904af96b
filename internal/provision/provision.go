// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"simbench-cli/internal/checksum"
	"simbench-cli/internal/manifest"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single download when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Minute

type (
	// Options controls one provisioning call. Values come from the config
	// layer and are passed explicitly so calls stay repeatable.
	Options struct {
		// Overwrite permits replacing a stale local file.
		Overwrite bool
		// VerifyExisting re-checksums local files that already exist. When
		// false, an existing file is trusted without touching it (the fast
		// path for large datasets).
		VerifyExisting bool
		// Parallelism bounds the number of items provisioned concurrently.
		// Values below 1 mean sequential.
		Parallelism int
		// Timeout bounds each download. Zero means DefaultTimeout.
		Timeout time.Duration
	}

	// Provisioner resolves manifest items into local files.
	Provisioner struct {
		logger *log.Logger
		client *http.Client
	}
)

// New creates a Provisioner. A nil logger discards progress output; a nil
// client falls back to http.DefaultClient. Per-download timeouts come from
// Options, not from the client.
func New(logger *log.Logger, client *http.Client) *Provisioner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provisioner{logger: logger, client: client}
}

// Provision materializes every manifest item under destRoot and returns one
// ItemState per item, in manifest order.
//
// Only batch-level problems return an error: an invalid manifest, or a
// destination root that cannot be created. Per-item failures land in the
// item's state. Cancelling ctx stops dispatching new items; items already
// running finish (or time out) and the partial state slice is returned.
func (p *Provisioner) Provision(ctx context.Context, m *manifest.Manifest, destRoot string, opts Options) ([]ItemState, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination root: %w", err)
	}

	states := make([]ItemState, len(m.Inputs))
	for i, item := range m.Inputs {
		states[i] = ItemState{
			Name:      item.Name,
			LocalPath: resolveTarget(destRoot, item.LocalPath),
			Status:    StatusPending,
			Action:    ActionNone,
		}
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(parallelism)

	for i, item := range m.Inputs {
		// Cooperative cancellation: stop dispatching, leave the rest Pending.
		if ctx.Err() != nil {
			p.logger.Warn("provisioning cancelled", "skipped", len(m.Inputs)-i)
			break
		}

		g.Go(func() error {
			// Each worker writes only its own slot; no further synchronization
			// is needed on the state slice.
			states[i] = p.provisionItem(ctx, item, states[i], opts)
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures live in the states

	verified, stale, failed, pending := Summary(states)
	p.logger.Info("provisioning finished",
		"verified", verified, "stale", stale, "failed", failed, "pending", pending)

	return states, nil
}

// provisionItem runs the per-item algorithm: fast path, optional
// re-verification, strategy dispatch, post-materialization checksum.
func (p *Provisioner) provisionItem(ctx context.Context, item manifest.Item, st ItemState, opts Options) ItemState {
	target := st.LocalPath

	if _, err := os.Lstat(target); err == nil {
		if !opts.VerifyExisting || item.Checksum == "" {
			// Trusted fast path: the file is there, and either nobody asked to
			// check it or the manifest declares nothing to check against.
			p.logger.Debug("item already present", "item", item.Name, "path", target)
			st.Status = StatusVerified
			return st
		}

		actual, err := checksum.Compute(target, item.ChecksumAlgorithm())
		if err != nil {
			st.Status = StatusFailed
			st.Err = &Error{Item: item.Name, Op: "verify existing file", Err: err}
			return st
		}
		if strings.EqualFold(actual, item.Checksum) {
			p.logger.Debug("item verified in place", "item", item.Name, "path", target)
			st.Status = StatusVerified
			st.Action = ActionVerifyOnly
			return st
		}

		mismatch := &checksum.MismatchError{Path: target, Expected: item.Checksum, Actual: actual}
		if !opts.Overwrite {
			p.logger.Warn("item is stale", "item", item.Name, "path", target)
			st.Status = StatusStale
			st.Action = ActionVerifyOnly
			st.Err = mismatch
			return st
		}
		// Fall through to re-materialize over the stale file.
	} else if !errors.Is(err, os.ErrNotExist) {
		st.Status = StatusFailed
		st.Err = &Error{Item: item.Name, Op: "stat destination", Err: err}
		return st
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		st.Status = StatusFailed
		st.Err = &Error{Item: item.Name, Op: "create destination directory", Err: err}
		return st
	}

	action, err := p.materialize(ctx, item, target, opts.Timeout)
	st.Action = action
	if err != nil {
		st.Status = StatusFailed
		st.Err = err
		return st
	}

	if item.Checksum != "" {
		match, err := checksum.Verify(target, item.Checksum, item.ChecksumAlgorithm())
		if err != nil {
			st.Status = StatusFailed
			st.Err = &Error{Item: item.Name, Op: "verify materialized file", Err: err}
			return st
		}
		if !match {
			// A mismatch right after a fresh copy/download is terminal: the
			// source itself does not have the declared content.
			actual, _ := checksum.Compute(target, item.ChecksumAlgorithm()) //nolint:errcheck // just read
			st.Status = StatusFailed
			st.Err = &Error{
				Item: item.Name,
				Op:   "verify materialized file",
				Err:  &checksum.MismatchError{Path: target, Expected: item.Checksum, Actual: actual},
			}
			return st
		}
	}

	p.logger.Info("item provisioned", "item", item.Name, "action", action, "path", target)
	st.Status = StatusVerified
	return st
}

// resolveTarget joins a manifest-relative local path onto the destination
// root. Absolute local paths are taken as-is.
func resolveTarget(destRoot, localPath string) string {
	if filepath.IsAbs(localPath) {
		return filepath.Clean(localPath)
	}
	return filepath.Join(destRoot, localPath)
}
