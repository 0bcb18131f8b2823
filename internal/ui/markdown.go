package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Makepad-fr/tada/internal/model"
)

// Markdown renders c as a GitHub task list.
func Markdown(c model.Checklist) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(escapeMarkdown(c.Title))
	b.WriteString("\n\n")
	if len(c.Items) == 0 {
		b.WriteString("_No items._\n")
		return b.String()
	}
	for _, it := range c.Items {
		if it.Completed {
			b.WriteString("- [x] ")
		} else {
			b.WriteString("- [ ] ")
		}
		b.WriteString(escapeMarkdown(it.Text))
		b.WriteString("\n")
	}
	return b.String()
}

var mdEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `#`, `\#`)

func escapeMarkdown(s string) string { return mdEscaper.Replace(s) }

// RenderMarkdown styles md for a terminal of the given width. A fixed
// standard style is used; auto-detection can block on terminal queries.
// On renderer failure md is returned unchanged.
func RenderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	style := "dark"
	if Current().Name == "mono" {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
