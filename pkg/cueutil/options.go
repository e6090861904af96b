// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize bounds user-supplied CUE files. Configuration files are
// small; anything larger is almost certainly not a config file.
const DefaultMaxFileSize int64 = 1 << 20

// Option configures ParseAndDecode.
type Option func(*options)

type options struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides the maximum accepted input size in bytes.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithConcrete controls whether validation requires all values to be
// concrete. Defaults to true; schemas with optional defaults resolved at
// decode time may disable it.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}
