// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"simbench-cli/internal/manifest"
)

// materialize executes the item's declared strategy. The strategy set is
// closed, so dispatch is a single switch; the surrounding policy (atomic
// writes, checksum gating) lives in the caller and in the helpers below.
func (p *Provisioner) materialize(ctx context.Context, item manifest.Item, target string, timeout time.Duration) (Action, error) {
	ok, errs := item.Strategy.IsValid()
	if !ok {
		return ActionNone, &Error{Item: item.Name, Op: "dispatch strategy", Err: errs[0]}
	}

	switch item.Strategy {
	case manifest.StrategySymlink:
		if item.IsRemote() {
			return ActionNone, &manifest.UnsupportedStrategyError{
				Item: item.Name, Strategy: item.Strategy, SourceURI: item.SourceURI,
			}
		}
		if err := p.symlink(item.SourceURI, target); err != nil {
			return ActionSymlink, &Error{Item: item.Name, Op: "create symlink", Err: err}
		}
		return ActionSymlink, nil

	case manifest.StrategyCopy:
		if item.IsRemote() {
			return ActionNone, &manifest.UnsupportedStrategyError{
				Item: item.Name, Strategy: item.Strategy, SourceURI: item.SourceURI,
			}
		}
		if err := p.copyFile(item.SourceURI, target); err != nil {
			return ActionCopy, &Error{Item: item.Name, Op: "copy file", Err: err}
		}
		return ActionCopy, nil

	case manifest.StrategyDownload:
		if err := p.download(ctx, item.SourceURI, target, timeout); err != nil {
			return ActionDownload, &Error{Item: item.Name, Op: "download", Err: err}
		}
		return ActionDownload, nil
	}

	// Unreachable: IsValid covers the closed set.
	return ActionNone, &Error{Item: item.Name, Op: "dispatch strategy",
		Err: &manifest.InvalidStrategyError{Value: item.Strategy}}
}

// symlink links source to target, replacing a pre-existing link or stale file.
func (p *Provisioner) symlink(source, target string) error {
	abs, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	if _, err := os.Lstat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to remove existing destination: %w", err)
		}
	}
	if err := os.Symlink(abs, target); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// copyFile copies source to target byte-for-byte, preserving the source file
// mode. The copy is atomic from the caller's perspective: bytes land in a
// temp file in the target directory, which is renamed over the final path
// only once fully written, so a crash mid-copy never leaves a corrupt target.
func (p *Provisioner) copyFile(source, target string) (err error) {
	srcFile, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }() // Read-only file; close error non-critical

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	return writeAtomic(target, srcInfo.Mode().Perm(), func(w io.Writer) error {
		if _, err := io.Copy(w, srcFile); err != nil {
			return fmt.Errorf("failed to copy file contents: %w", err)
		}
		return nil
	})
}

// download fetches an http(s) source into target with the same temp-then-
// rename discipline as copyFile. The request honors ctx plus the per-item
// timeout; there are no automatic retries, the caller may simply re-invoke
// provisioning since it is idempotent.
func (p *Provisioner) download(ctx context.Context, source, target string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // Response body; close error non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, source)
	}

	return writeAtomic(target, 0o644, func(w io.Writer) error {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return fmt.Errorf("transfer interrupted: %w", err)
		}
		return nil
	})
}

// writeAtomic streams content into a temp file next to target and renames it
// into place. On any failure the temp file is removed, so partial writes are
// never observable at the final path. Concurrent writers to distinct targets
// are safe without locking because each works on its own temp file.
func writeAtomic(target string, mode os.FileMode, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".simbench-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			// Best-effort cleanup; never leave partial files behind.
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
