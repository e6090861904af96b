// SPDX-License-Identifier: MPL-2.0

// Package provision materializes the input items declared by a manifest into
// a local destination tree.
//
// Each item is resolved through one of three strategies (symlink, copy,
// download) behind a shared policy: writes are atomic (temp file in the
// target directory, then rename), declared checksums gate the result, and an
// already-verified item is never touched again. Provisioning a manifest is
// therefore idempotent; re-running it against a fully verified tree performs
// no I/O.
//
// Items are provisioned with bounded parallelism. A failure in one item is
// captured in its per-item state and never aborts siblings; the caller
// receives the full state slice and decides how to proceed.
package provision
