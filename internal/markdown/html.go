package markdown

import (
	"fmt"
	"html/template"
	"strings"
)

// HTML renders blocks as markup. Heading and list text is escaped;
// paragraph markup was escaped before the inline rules ran.
func HTML(blocks []Block) template.HTML {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case KindHeading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", b.Level, template.HTMLEscapeString(b.Text), b.Level)
		case KindList:
			sb.WriteString("<ul>\n")
			for _, item := range b.Items {
				fmt.Fprintf(&sb, "<li>%s</li>\n", template.HTMLEscapeString(item))
			}
			sb.WriteString("</ul>\n")
		case KindParagraph:
			fmt.Fprintf(&sb, "<p>%s</p>\n", b.HTML)
		}
	}
	return template.HTML(sb.String())
}

// RenderHTML is shorthand for HTML(Render(content)).
func RenderHTML(content string) template.HTML {
	return HTML(Render(content))
}
