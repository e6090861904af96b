// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the runtime.GOOS string literals used for
// platform-specific behavior, such as resolving the configuration
// directory per operating system.
package platform
