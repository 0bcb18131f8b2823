package model

import (
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision, e.g.
// 2023-11-14T22:13:20.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Item is one line of a checklist. Items carry no identity of their own;
// they are addressed by position inside their checklist, and removing an
// item shifts every later position down by one.
type Item struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist is a titled, ordered list of items.
// Field order is the serialized order: id, title, items, lastModified.
type Checklist struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Items        []Item `json:"items"`
	LastModified string `json:"lastModified"`
}

// New returns an empty checklist stamped with now. The id is the epoch
// millisecond of now; two checklists created in the same millisecond share it.
func New(title string, now time.Time) Checklist {
	return Checklist{
		ID:           now.UnixMilli(),
		Title:        strings.TrimSpace(title),
		Items:        []Item{},
		LastModified: FormatTimestamp(now),
	}
}

// FormatTimestamp renders t the way lastModified is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Clone returns a copy that shares no item storage with c.
func (c Checklist) Clone() Checklist {
	out := c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// CompletedCount counts items marked done.
func (c Checklist) CompletedCount() int {
	n := 0
	for _, it := range c.Items {
		if it.Completed {
			n++
		}
	}
	return n
}

// Progress is the completion state of a checklist.
type Progress struct {
	Completed int
	Total     int
	Percent   float64
}

// Summary is one row of the saved-checklist view.
type Summary struct {
	Index          int
	ID             int64
	Title          string
	ItemCount      int
	CompletedCount int
	LastModified   string
}

// Summarize annotates c with its counts for display at position index.
func Summarize(index int, c Checklist) Summary {
	return Summary{
		Index:          index,
		ID:             c.ID,
		Title:          c.Title,
		ItemCount:      len(c.Items),
		CompletedCount: c.CompletedCount(),
		LastModified:   c.LastModified,
	}
}
