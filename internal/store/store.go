// Package store persists the saved checklist collection.
//
// The collection lives as one serialized blob under a single key of a Slot,
// a small key-value store. Backends live in subpackages (sqlitestore,
// filestore, memstore); Collection is the only thing the rest of the
// program talks to.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// SlotKey is the key the saved collection is stored under.
const SlotKey = "savedChecklists"

// Slot is a persistent key-value store.
// Get returns (nil, nil) when the key is absent.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ErrParse matches any *ParseError via errors.Is.
var ErrParse = errors.New("malformed stored checklists")

// ParseError reports slot content that could not be decoded.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Collection reads and writes the whole saved collection at once.
type Collection struct {
	slot Slot
	key  string
}

// NewCollection binds a collection to slot under SlotKey.
func NewCollection(slot Slot) *Collection {
	return &Collection{slot: slot, key: SlotKey}
}

// storedChecklist is the on-disk shape. lastModified stays raw so legacy
// numeric values can be migrated.
type storedChecklist struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Items        []model.Item    `json:"items"`
	LastModified json.RawMessage `json:"lastModified"`
}

// Load returns the saved checklists in stored order. An absent slot is an
// empty collection; undecodable content is a *ParseError.
func (c *Collection) Load(ctx context.Context) ([]model.Checklist, error) {
	b, err := c.slot.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	if b == nil {
		return []model.Checklist{}, nil
	}
	var stored []storedChecklist
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, &ParseError{Key: c.key, Err: err}
	}
	out := make([]model.Checklist, 0, len(stored))
	for i, s := range stored {
		lm, err := MigrateLastModified(s.LastModified)
		if err != nil {
			return nil, &ParseError{Key: c.key, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		items := s.Items
		if items == nil {
			items = []model.Item{}
		}
		out = append(out, model.Checklist{
			ID:           s.ID,
			Title:        s.Title,
			Items:        items,
			LastModified: lm,
		})
	}
	return out, nil
}

// Save overwrites the slot with checklists.
func (c *Collection) Save(ctx context.Context, checklists []model.Checklist) error {
	if checklists == nil {
		checklists = []model.Checklist{}
	}
	b, err := json.Marshal(checklists)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := c.slot.Set(ctx, c.key, b); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// Discard deletes the slot, e.g. after Load reported a *ParseError.
func (c *Collection) Discard(ctx context.Context) error {
	if err := c.slot.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("delete %s: %w", c.key, err)
	}
	return nil
}

// Close releases the underlying slot.
func (c *Collection) Close() error {
	return c.slot.Close()
}
