package web

import (
	"context"
	"errors"

	"github.com/palmguru/palmguru/internal/clipboard"
)

// copyReport is what the browser says about its own clipboard write.
type copyReport struct {
	BrowserError string `json:"browser_error,omitempty"`
}

type copyReportKey struct{}

func withCopyReport(ctx context.Context, rep copyReport) context.Context {
	return context.WithValue(ctx, copyReportKey{}, rep)
}

// Clipboard is the clipboard to give sessions served by a Handler. The
// browser performs the copy itself and reports the outcome with the copy
// request; a reported failure fails the copy, otherwise the text is passed
// on to host. A nil host discards it.
func Clipboard(host clipboard.Clipboard) clipboard.Clipboard {
	if host == nil {
		host = clipboard.Discard
	}
	return clipboard.Func(func(ctx context.Context, text string) error {
		if rep, ok := ctx.Value(copyReportKey{}).(copyReport); ok && rep.BrowserError != "" {
			return errors.New("browser clipboard: " + rep.BrowserError)
		}
		return host.WriteText(ctx, text)
	})
}
