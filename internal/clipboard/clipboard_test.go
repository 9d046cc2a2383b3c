package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/atotto/clipboard"
)

func TestSystemUsesClipboardWrite(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this host")
	}
	var got string
	orig := clipboardWrite
	clipboardWrite = func(text string) error {
		got = text
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	if err := (System{}).WriteText(t.Context(), "# Reading"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got != "# Reading" {
		t.Errorf("expected text to reach the clipboard, got %q", got)
	}
}

func TestSystemHonoursCancelledContext(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this host")
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := (System{}).WriteText(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	want := errors.New("denied")
	f := Func(func(ctx context.Context, text string) error { return want })
	if err := f.WriteText(t.Context(), "x"); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
	if err := Discard.WriteText(t.Context(), "x"); err != nil {
		t.Errorf("Discard returned %v", err)
	}
}
