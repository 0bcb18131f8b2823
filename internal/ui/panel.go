package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// ProgressBar renders a bar of width cells followed by the percentage.
func ProgressBar(done, total, width int) string {
	t := Current()
	if width < 5 {
		width = 5
	}
	pct := 0
	filled := 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
		pct = int(float64(done) / float64(total) * 100)
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarEmpty, width-filled)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines with the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// ChecklistLines renders a checklist the way `tada show` prints it:
// header, counts, progress bar, then one numbered line per item.
func ChecklistLines(c model.Checklist) []string {
	t := Current()
	lines := []string{
		t.Title.Render(c.Title),
		ProgressLine(c),
		t.Muted.Render(ProgressBar(c.CompletedCount(), len(c.Items), 28)),
		"",
	}
	if len(c.Items) == 0 {
		return append(lines, t.Muted.Render("No items in this checklist."))
	}
	for i, it := range c.Items {
		lines = append(lines, ItemLine(i, it))
	}
	return lines
}

// ProgressLine is the "Items: N  Completed: M" counter.
func ProgressLine(c model.Checklist) string {
	t := Current()
	return fmt.Sprintf("%s %d  %s %d",
		t.Accent.Render("Items:"), len(c.Items),
		t.Success.Render("Completed:"), c.CompletedCount())
}

// ItemLine renders one item with its 1-based number.
func ItemLine(index int, it model.Item) string {
	t := Current()
	idx := t.Muted.Render(fmt.Sprintf("%2d.", index+1))
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Text
	if it.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	return fmt.Sprintf("%s %s %s", idx, box, text)
}

// SummaryLine renders a saved-list row: "3 items (1 completed) • Nov 14, 2023".
func SummaryLine(s model.Summary) string {
	noun := "items"
	if s.ItemCount == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%d %s (%d completed) • %s", s.ItemCount, noun, s.CompletedCount, FormatDate(s.LastModified))
}

// FormatDate renders a stored lastModified for people. Unparseable values
// are shown as stored.
func FormatDate(lastModified string) string {
	ts, err := time.Parse(time.RFC3339, lastModified)
	if err != nil {
		if lastModified == "" {
			return "never"
		}
		return lastModified
	}
	return ts.Local().Format("Jan 2, 2006 15:04")
}
