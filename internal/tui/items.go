package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// itemRow adapts a checklist item to list.Item. index is the position in
// the checklist, which differs from the list index while filtering.
type itemRow struct {
	index int
	item  model.Item
}

func (r itemRow) Title() string       { return r.item.Text }
func (r itemRow) Description() string { return "" }
func (r itemRow) FilterValue() string { return r.item.Text }

type itemDelegate struct{}

func (itemDelegate) Height() int                         { return 1 }
func (itemDelegate) Spacing() int                        { return 0 }
func (itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	r, ok := li.(itemRow)
	if !ok {
		return
	}
	t := ui.Current()
	box, text := t.Muted.Render(t.BoxUnchecked), r.item.Text
	if r.item.Completed {
		box, text = t.Success.Render(t.BoxChecked), t.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// savedRow adapts a saved checklist summary to list.Item.
type savedRow struct {
	model.Summary
}

func (r savedRow) Title() string       { return r.Summary.Title }
func (r savedRow) Description() string { return ui.SummaryLine(r.Summary) }
func (r savedRow) FilterValue() string { return r.Summary.Title }

type savedDelegate struct{}

func (savedDelegate) Height() int                         { return 2 }
func (savedDelegate) Spacing() int                        { return 1 }
func (savedDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (savedDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	r, ok := li.(savedRow)
	if !ok {
		return
	}
	t := ui.Current()
	title := t.Title.Render(r.Title())
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s\n  %s", prefix, title, t.Muted.Render(r.Description()))
}

func itemRows(c model.Checklist) []list.Item {
	out := make([]list.Item, 0, len(c.Items))
	for i, it := range c.Items {
		out = append(out, itemRow{index: i, item: it})
	}
	return out
}

func savedRows(sums []model.Summary) []list.Item {
	out := make([]list.Item, 0, len(sums))
	for _, s := range sums {
		out = append(out, savedRow{s})
	}
	return out
}

// header is the editor list title with live counts.
func header(c model.Checklist) string {
	t := ui.Current()
	done := c.CompletedCount()
	return strings.Join([]string{
		t.Title.Render(c.Title),
		t.Success.Render(t.SymDone) + fmt.Sprintf(" %d", done),
		t.Pending.Render(t.SymPending) + fmt.Sprintf(" %d", len(c.Items)-done),
		t.Accent.Render("Total") + fmt.Sprintf(" %d", len(c.Items)),
	}, "  ")
}
