package markdown

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
	}
	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	strongStyle = lipgloss.NewStyle().Bold(true)
	emStyle     = lipgloss.NewStyle().Italic(true)
)

// Terminal writes blocks to w styled for a terminal. It uses the same
// inline rules as the HTML renderer.
func Terminal(w io.Writer, blocks []Block) error {
	for _, b := range blocks {
		var err error
		switch b.Kind {
		case KindHeading:
			_, err = fmt.Fprintf(w, "\n%s\n", headingStyles[b.Level].Render(b.Text))
		case KindList:
			for _, item := range b.Items {
				if _, err = fmt.Fprintf(w, "  %s %s\n", bulletStyle.Render("•"), item); err != nil {
					return err
				}
			}
		case KindParagraph:
			_, err = fmt.Fprintln(w, styleInline(b.Text))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func styleInline(s string) string {
	return applyRules(s, func(rule int, inner string) string {
		if rule == 0 {
			return strongStyle.Render(inner)
		}
		return emStyle.Render(inner)
	})
}
