//go:build !cgo

package treesitter

import "context"

// Available reports whether tree-sitter support is compiled in.
func Available() bool { return false }

// Check is unavailable without CGO.
func Check(ctx context.Context, lang Language, source []byte) (*Report, error) {
	return nil, ErrUnavailable
}
