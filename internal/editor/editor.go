// Package editor holds the mutations of a single checklist.
//
// Every function takes a checklist value and returns the next one. The
// input's item slice is never written, so callers may keep the old value.
package editor

import (
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// AddItem appends raw, trimmed, as an open item. Blank text is ignored.
func AddItem(c model.Checklist, raw string) model.Checklist {
	text := strings.TrimSpace(raw)
	if text == "" {
		return c
	}
	items := make([]model.Item, 0, len(c.Items)+1)
	items = append(items, c.Items...)
	items = append(items, model.Item{Text: text})
	c.Items = items
	return c
}

// ToggleItem flips the completion of the item at index.
// Out-of-range indexes leave c unchanged.
func ToggleItem(c model.Checklist, index int) model.Checklist {
	if !inRange(c, index) {
		return c
	}
	c = c.Clone()
	c.Items[index].Completed = !c.Items[index].Completed
	return c
}

// RemoveItem drops the item at index; later items move up one position.
func RemoveItem(c model.Checklist, index int) model.Checklist {
	if !inRange(c, index) {
		return c
	}
	items := make([]model.Item, 0, len(c.Items)-1)
	items = append(items, c.Items[:index]...)
	items = append(items, c.Items[index+1:]...)
	c.Items = items
	return c
}

// EditItem replaces the text at index with raw, trimmed.
// Blank text or a bad index leaves c unchanged.
func EditItem(c model.Checklist, index int, raw string) model.Checklist {
	text := strings.TrimSpace(raw)
	if text == "" || !inRange(c, index) {
		return c
	}
	c = c.Clone()
	c.Items[index].Text = text
	return c
}

// Clear removes every item. It cannot be undone; ask the user first.
func Clear(c model.Checklist) model.Checklist {
	c.Items = []model.Item{}
	return c
}

// Progress reports how much of c is done. Percent is 0 for an empty list.
func Progress(c model.Checklist) model.Progress {
	p := model.Progress{Completed: c.CompletedCount(), Total: len(c.Items)}
	if p.Total > 0 {
		p.Percent = 100 * float64(p.Completed) / float64(p.Total)
	}
	return p
}

func inRange(c model.Checklist, index int) bool {
	return index >= 0 && index < len(c.Items)
}
