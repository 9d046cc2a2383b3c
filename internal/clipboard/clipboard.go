// Package clipboard writes text to a clipboard.
package clipboard

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when the host has no usable clipboard.
var ErrUnsupported = errors.New("clipboard: not supported on this host")

// Clipboard accepts text copies.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

var clipboardWrite = clipboard.WriteAll

// System writes to the clipboard of the machine running the process.
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return clipboardWrite(text)
}

// Func adapts a function to Clipboard.
type Func func(ctx context.Context, text string) error

func (f Func) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Discard accepts every copy and does nothing. The web UI uses it when the
// browser performs the copy itself.
var Discard Clipboard = Func(func(context.Context, string) error { return nil })
