// SPDX-License-Identifier: MPL-2.0

// Package checksum computes and verifies content digests for staged input
// files. All digest computation streams through a fixed-size buffer so that
// multi-gigabyte datasets never have to fit in memory.
package checksum
