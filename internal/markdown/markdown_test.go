package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderScenario(t *testing.T) {
	blocks := Render("# Title\n- a\n- b\nplain **bold** text")

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}

	if blocks[0].Kind != KindHeading || blocks[0].Level != 1 || blocks[0].Text != "Title" {
		t.Errorf("unexpected heading block: %+v", blocks[0])
	}

	if blocks[1].Kind != KindList {
		t.Fatalf("expected list block, got %q", blocks[1].Kind)
	}
	if len(blocks[1].Items) != 2 || blocks[1].Items[0] != "a" || blocks[1].Items[1] != "b" {
		t.Errorf("unexpected list items: %v", blocks[1].Items)
	}

	if blocks[2].Kind != KindParagraph {
		t.Fatalf("expected paragraph block, got %q", blocks[2].Kind)
	}
	if got := string(blocks[2].HTML); got != "plain <strong>bold</strong> text" {
		t.Errorf("unexpected paragraph HTML: %q", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	if blocks := Render(""); blocks != nil {
		t.Errorf("expected no blocks for empty content, got %+v", blocks)
	}
	if got := RenderHTML(""); got != "" {
		t.Errorf("expected empty HTML, got %q", got)
	}
}

func TestHeadingPrecedence(t *testing.T) {
	tests := []struct {
		line  string
		level int
		text  string
	}{
		{"### Heart Line", 3, "Heart Line"},
		{"## Mind Line", 2, "Mind Line"},
		{"# Fate Line", 1, "Fate Line"},
	}

	for _, tt := range tests {
		blocks := Render(tt.line)
		if len(blocks) != 1 {
			t.Fatalf("%q: expected 1 block, got %d", tt.line, len(blocks))
		}
		b := blocks[0]
		if b.Kind != KindHeading {
			t.Errorf("%q: expected heading, got %q", tt.line, b.Kind)
			continue
		}
		if b.Level != tt.level || b.Text != tt.text {
			t.Errorf("%q: got level %d text %q, want %d %q", tt.line, b.Level, b.Text, tt.level, tt.text)
		}
	}
}

func TestMarkerWithoutSpaceIsParagraph(t *testing.T) {
	for _, line := range []string{"#Title", "-item", "*item", "##", "#### deep"} {
		blocks := Render(line)
		if len(blocks) != 1 || blocks[0].Kind != KindParagraph {
			t.Errorf("%q: expected a single paragraph, got %+v", line, blocks)
		}
	}
}

func TestMixedListMarkersShareOneList(t *testing.T) {
	blocks := Render("- one\n* two\n- three")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := strings.Join(blocks[0].Items, ","); got != "one,two,three" {
		t.Errorf("unexpected items: %q", got)
	}
}

func TestListsSeparatedByParagraph(t *testing.T) {
	blocks := Render("- a\ntext\n- b")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Kind != KindList || blocks[2].Kind != KindList {
		t.Errorf("expected two separate lists, got %q and %q", blocks[0].Kind, blocks[2].Kind)
	}
}

func TestOneBlockPerLineOutsideLists(t *testing.T) {
	content := "## Overview\nYour palm shows *curiosity*.\n\n- long heart line\n- deep mind line\nDisclaimer"
	blocks := Render(content)

	// 6 lines, two of them merged into one list.
	if len(blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(blocks))
	}
	if blocks[2].Kind != KindParagraph || blocks[2].Text != "" {
		t.Errorf("expected empty paragraph for blank line, got %+v", blocks[2])
	}
}

func TestHeadingsAndItemsAreNotEmphasized(t *testing.T) {
	out := string(RenderHTML("# **Title**\n- *item*"))
	if strings.Contains(out, "<strong>") || strings.Contains(out, "<em>") {
		t.Errorf("expected no inline markup in headings or list items, got %q", out)
	}
	if !strings.Contains(out, "<h1>**Title**</h1>") {
		t.Errorf("expected literal heading text, got %q", out)
	}
}

func TestEmphasize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"**bold**", "<strong>bold</strong>"},
		{"*soft*", "<em>soft</em>"},
		{"**a** and *b*", "<strong>a</strong> and <em>b</em>"},
		{"**a** **b**", "<strong>a</strong> <strong>b</strong>"},
		{"*a* *b*", "<em>a</em> <em>b</em>"},
		{"lonely * star", "lonely * star"},
		{"***x***", "<strong><em>x</strong></em>"},
	}

	for _, tt := range tests {
		if got := Emphasize(tt.in); got != tt.want {
			t.Errorf("Emphasize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmphasizeIdempotentWithoutAsterisks(t *testing.T) {
	for _, s := range []string{"", "hello", "The Heart Line curves upward.", "a < b & c"} {
		once := Emphasize(s)
		if Emphasize(once) != once || once != s {
			t.Errorf("Emphasize not idempotent for %q: %q", s, once)
		}
	}
}

func TestHTMLEscapesModelOutput(t *testing.T) {
	out := string(RenderHTML("<script>alert(1)</script> **x**\n# <b>\n- <i>"))
	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") || strings.Contains(out, "<i>") {
		t.Errorf("expected markup to be escaped, got %q", out)
	}
	if !strings.Contains(out, "<strong>x</strong>") {
		t.Errorf("expected strong span to survive escaping, got %q", out)
	}
}

func TestHTMLStructure(t *testing.T) {
	out := string(RenderHTML("## Heart\n- a\n- b\nend"))
	want := "<h2>Heart</h2>\n<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<p>end</p>\n"
	if out != want {
		t.Errorf("unexpected HTML:\ngot  %q\nwant %q", out, want)
	}
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	if err := Terminal(&buf, Render("# Reading\n- heart\nYou are **bold**.")); err != nil {
		t.Fatalf("Terminal: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Reading", "heart", "bold"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Errorf("expected strong markers to be consumed, got %q", out)
	}
}
