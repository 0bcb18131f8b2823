// Package session coordinates one user's work: the saved collection, the
// single active checklist, and the moves between them.
//
// A Session starts with no active checklist. Create or Load make one active;
// editor operations then replace it value by value; Save writes it into the
// collection. Every change to the collection is persisted at once. A Session
// is owned by one goroutine and is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/transfer"
)

var (
	ErrNoActive        = errors.New("no active checklist")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// State is the coordinator state.
type State int

const (
	NoActiveChecklist State = iota
	EditingChecklist
)

func (s State) String() string {
	switch s {
	case NoActiveChecklist:
		return "no-active-checklist"
	case EditingChecklist:
		return "editing-checklist"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Session struct {
	coll   *store.Collection
	log    logging.Logger
	now    func() time.Time
	saved  []model.Checklist
	active *model.Checklist

	// Recovered is set when Open found unreadable stored data and discarded it.
	Recovered bool
}

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Open loads the saved collection. Unreadable stored data is discarded and
// the session continues with an empty collection.
func Open(ctx context.Context, coll *store.Collection, opts ...Option) (*Session, error) {
	s := &Session{coll: coll, log: logging.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}

	saved, err := coll.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrParse) {
			return nil, err
		}
		s.log.Warn(ctx, "discarding unreadable saved checklists", "err", err)
		if derr := coll.Discard(ctx); derr != nil {
			return nil, derr
		}
		saved = []model.Checklist{}
		s.Recovered = true
	}
	s.saved = saved
	s.log.Debug(ctx, "collection loaded", "count", len(saved))
	return s, nil
}

func (s *Session) State() State {
	if s.active == nil {
		return NoActiveChecklist
	}
	return EditingChecklist
}

// Active returns a copy of the active checklist.
func (s *Session) Active() (model.Checklist, bool) {
	if s.active == nil {
		return model.Checklist{}, false
	}
	return s.active.Clone(), true
}

// Create starts a new, unsaved checklist and makes it active. Its id is
// bumped past any saved checklist created in the same millisecond.
func (s *Session) Create(title string) (model.Checklist, error) {
	if strings.TrimSpace(title) == "" {
		return model.Checklist{}, ErrEmptyTitle
	}
	c := model.New(title, s.now())
	for s.indexOf(c.ID) >= 0 {
		c.ID++
	}
	s.active = &c
	return c.Clone(), nil
}

// Rename retitles the active checklist.
func (s *Session) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return s.edit(func(c model.Checklist) model.Checklist {
		c.Title = title
		return c
	})
}

func (s *Session) AddItem(raw string) error {
	return s.edit(func(c model.Checklist) model.Checklist { return editor.AddItem(c, raw) })
}

func (s *Session) ToggleItem(index int) error {
	return s.edit(func(c model.Checklist) model.Checklist { return editor.ToggleItem(c, index) })
}

func (s *Session) RemoveItem(index int) error {
	return s.edit(func(c model.Checklist) model.Checklist { return editor.RemoveItem(c, index) })
}

func (s *Session) EditItem(index int, raw string) error {
	return s.edit(func(c model.Checklist) model.Checklist { return editor.EditItem(c, index, raw) })
}

// Clear empties the active checklist. Callers confirm with the user first.
func (s *Session) Clear() error {
	return s.edit(editor.Clear)
}

func (s *Session) Progress() (model.Progress, error) {
	if s.active == nil {
		return model.Progress{}, ErrNoActive
	}
	return editor.Progress(*s.active), nil
}

func (s *Session) edit(fn func(model.Checklist) model.Checklist) error {
	if s.active == nil {
		return ErrNoActive
	}
	next := fn(*s.active)
	s.active = &next
	return nil
}

// Save stamps the active checklist and writes it into the collection,
// replacing the entry with the same id or appending a new one.
func (s *Session) Save(ctx context.Context) (model.Checklist, error) {
	if s.active == nil {
		return model.Checklist{}, ErrNoActive
	}
	c := s.active.Clone()
	c.LastModified = model.FormatTimestamp(s.now())

	next := make([]model.Checklist, len(s.saved), len(s.saved)+1)
	copy(next, s.saved)
	if i := s.indexOf(c.ID); i >= 0 {
		next[i] = c
	} else {
		next = append(next, c)
	}
	if err := s.persist(ctx, next); err != nil {
		return model.Checklist{}, err
	}
	s.active = &c
	s.log.Info(ctx, "checklist saved", "id", c.ID, "items", len(c.Items))
	return c.Clone(), nil
}

func (s *Session) indexOf(id int64) int {
	for i, c := range s.saved {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// List summarizes the saved collection in stored order.
func (s *Session) List() []model.Summary {
	out := make([]model.Summary, 0, len(s.saved))
	for i, c := range s.saved {
		out = append(out, model.Summarize(i, c))
	}
	return out
}

// Len is the number of saved checklists.
func (s *Session) Len() int { return len(s.saved) }

// Saved returns a copy of the saved checklist at index.
func (s *Session) Saved(index int) (model.Checklist, error) {
	if index < 0 || index >= len(s.saved) {
		return model.Checklist{}, fmt.Errorf("%w: have %d, got %d", ErrIndexOutOfRange, len(s.saved), index)
	}
	return s.saved[index].Clone(), nil
}

// Load makes a copy of the saved checklist at index active.
func (s *Session) Load(index int) (model.Checklist, error) {
	c, err := s.Saved(index)
	if err != nil {
		return model.Checklist{}, err
	}
	s.active = &c
	return c.Clone(), nil
}

// Delete removes the saved checklist at index. It cannot be undone; callers
// confirm with the user first. The active checklist is left alone.
func (s *Session) Delete(ctx context.Context, index int) (model.Checklist, error) {
	gone, err := s.Saved(index)
	if err != nil {
		return model.Checklist{}, err
	}
	next := make([]model.Checklist, 0, len(s.saved)-1)
	next = append(next, s.saved[:index]...)
	next = append(next, s.saved[index+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return model.Checklist{}, err
	}
	s.log.Info(ctx, "checklist deleted", "id", gone.ID)
	return gone, nil
}

func (s *Session) persist(ctx context.Context, next []model.Checklist) error {
	if err := s.coll.Save(ctx, next); err != nil {
		s.log.Error(ctx, "persist collection", "err", err)
		return err
	}
	s.saved = next
	return nil
}

// Export writes the active checklist into dir and returns the file path.
func (s *Session) Export(dir string) (string, error) {
	if s.active == nil {
		return "", ErrNoActive
	}
	return transfer.WriteExport(dir, *s.active, s.now())
}

// Import replaces the active checklist with the one in the file at path.
// On any error the active checklist is unchanged.
func (s *Session) Import(path string) (model.Checklist, error) {
	b, err := transfer.ReadImport(path)
	if err != nil {
		return model.Checklist{}, err
	}
	return s.ImportBytes(b)
}

// ImportBytes is Import for content already in memory.
func (s *Session) ImportBytes(b []byte) (model.Checklist, error) {
	c, err := transfer.Import(b)
	if err != nil {
		return model.Checklist{}, err
	}
	s.active = &c
	return c.Clone(), nil
}
