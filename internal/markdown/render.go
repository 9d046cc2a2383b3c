// Package markdown renders the small markdown subset produced by the palm
// analysis prompt: three heading levels, flat bullet lists and paragraphs
// with **strong** and *emphasis* spans.
//
// It is not a general markdown parser. Nested lists, links, code spans,
// ordered lists and escaping of literal asterisks or hashes are not
// supported.
package markdown

import (
	"html/template"
	"regexp"
	"strings"
)

// BlockKind identifies the display element a block renders to.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindList      BlockKind = "list"
	KindParagraph BlockKind = "paragraph"
)

// Block is one display element produced from one or more input lines.
type Block struct {
	Kind  BlockKind     `json:"kind"`
	Level int           `json:"level,omitempty"` // headings only, 1..3
	Text  string        `json:"text,omitempty"`  // marker stripped for headings, raw line for paragraphs
	Items []string      `json:"items,omitempty"` // lists only
	HTML  template.HTML `json:"html,omitempty"`  // paragraphs only
}

// headingMarkers are checked in order; "### " must win over "## " and "# ".
var headingMarkers = []struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

var listMarkers = []string{"- ", "* "}

// Render turns content into display blocks in a single top-to-bottom pass.
// Consecutive list lines are grouped into one list block. Empty content
// yields no blocks.
func Render(content string) []Block {
	if content == "" {
		return nil
	}

	var blocks []Block
	inList := false

	for _, line := range strings.Split(content, "\n") {
		if item, ok := listItem(line); ok {
			if !inList {
				blocks = append(blocks, Block{Kind: KindList})
				inList = true
			}
			last := &blocks[len(blocks)-1]
			last.Items = append(last.Items, item)
			continue
		}
		inList = false
		blocks = append(blocks, renderLine(line))
	}

	return blocks
}

func renderLine(line string) Block {
	for _, m := range headingMarkers {
		if strings.HasPrefix(line, m.prefix) {
			return Block{Kind: KindHeading, Level: m.level, Text: line[len(m.prefix):]}
		}
	}
	return Block{
		Kind: KindParagraph,
		Text: line,
		HTML: template.HTML(Emphasize(template.HTMLEscapeString(line))),
	}
}

func listItem(line string) (string, bool) {
	for _, m := range listMarkers {
		if strings.HasPrefix(line, m) {
			return line[len(m):], true
		}
	}
	return "", false
}

// inlineRule is one ordered substitution. Strong must run before emphasis
// so that "**" pairs are not consumed as two empty emphasis spans.
type inlineRule struct {
	pattern *regexp.Regexp
	open    string
	close   string
}

var inlineRules = []inlineRule{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "<strong>", "</strong>"},
	{regexp.MustCompile(`\*(.*?)\*`), "<em>", "</em>"},
}

// Emphasize applies the inline rules to s. Text without asterisks is
// returned unchanged.
func Emphasize(s string) string {
	return applyRules(s, func(i int, inner string) string {
		return inlineRules[i].open + inner + inlineRules[i].close
	})
}

// applyRules runs every inline rule in order, wrapping each match's inner
// text with wrap.
func applyRules(s string, wrap func(rule int, inner string) string) string {
	if !strings.Contains(s, "*") {
		return s
	}
	for i, rule := range inlineRules {
		s = rule.pattern.ReplaceAllStringFunc(s, func(match string) string {
			inner := rule.pattern.FindStringSubmatch(match)[1]
			return wrap(i, inner)
		})
	}
	return s
}
