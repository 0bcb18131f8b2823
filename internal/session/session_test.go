package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/transfer"
)

// fixedClock returns t0, t0+1ms, t0+2ms, ...
func fixedClock(t0 time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := t0.Add(time.Duration(n) * time.Millisecond)
		n++
		return t
	}
}

var t0 = time.UnixMilli(1700000000000)

func openMem(t *testing.T) (*Session, *memstore.Store) {
	t.Helper()
	slot := memstore.New()
	s, err := Open(context.Background(), store.NewCollection(slot), WithClock(fixedClock(t0)))
	require.NoError(t, err)
	return s, slot
}

func TestOpen_StartsWithoutActiveChecklist(t *testing.T) {
	s, _ := openMem(t)

	assert.Equal(t, NoActiveChecklist, s.State())
	_, ok := s.Active()
	assert.False(t, ok)
	assert.Empty(t, s.List())
}

func TestEditorOps_RequireActive(t *testing.T) {
	s, _ := openMem(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.AddItem("x"), ErrNoActive)
	assert.ErrorIs(t, s.ToggleItem(0), ErrNoActive)
	assert.ErrorIs(t, s.RemoveItem(0), ErrNoActive)
	assert.ErrorIs(t, s.EditItem(0, "x"), ErrNoActive)
	assert.ErrorIs(t, s.Clear(), ErrNoActive)
	assert.ErrorIs(t, s.Rename("x"), ErrNoActive)
	_, err := s.Progress()
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = s.Save(ctx)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = s.Export(t.TempDir())
	assert.ErrorIs(t, err, ErrNoActive)
}

func TestCreate(t *testing.T) {
	s, _ := openMem(t)

	_, err := s.Create("   ")
	require.ErrorIs(t, err, ErrEmptyTitle)
	assert.Equal(t, NoActiveChecklist, s.State())

	c, err := s.Create("  Groceries ")
	require.NoError(t, err)
	assert.Equal(t, EditingChecklist, s.State())
	assert.Equal(t, "Groceries", c.Title)
	assert.Equal(t, t0.UnixMilli(), c.ID)
	assert.Empty(t, c.Items)
	assert.Empty(t, s.List(), "create does not save")
}

func TestCreate_SameMillisecondGetsFreshID(t *testing.T) {
	ctx := context.Background()
	frozen := func() time.Time { return t0 }
	s, err := Open(ctx, store.NewCollection(memstore.New()), WithClock(frozen))
	require.NoError(t, err)

	for _, title := range []string{"A", "B", "C"} {
		_, err := s.Create(title)
		require.NoError(t, err)
		_, err = s.Save(ctx)
		require.NoError(t, err)
	}

	sums := s.List()
	require.Len(t, sums, 3, "a colliding id must not replace the earlier save")
	ids := map[int64]string{}
	for i := range sums {
		c, err := s.Saved(i)
		require.NoError(t, err)
		ids[c.ID] = c.Title
	}
	assert.Equal(t, map[int64]string{t0.UnixMilli(): "A", t0.UnixMilli() + 1: "B", t0.UnixMilli() + 2: "C"}, ids)
}

func TestEdit_ReplacesActive(t *testing.T) {
	s, _ := openMem(t)
	_, err := s.Create("Trip")
	require.NoError(t, err)

	require.NoError(t, s.AddItem("passport"))
	require.NoError(t, s.AddItem("  "))
	require.NoError(t, s.AddItem("socks"))
	require.NoError(t, s.ToggleItem(1))
	require.NoError(t, s.ToggleItem(7))

	c, _ := s.Active()
	require.Len(t, c.Items, 2)
	assert.Equal(t, model.Item{Text: "socks", Completed: true}, c.Items[1])

	p, err := s.Progress()
	require.NoError(t, err)
	assert.Equal(t, model.Progress{Completed: 1, Total: 2, Percent: 50}, p)

	require.NoError(t, s.RemoveItem(0))
	require.NoError(t, s.EditItem(0, "wool socks"))
	c, _ = s.Active()
	assert.Equal(t, []model.Item{{Text: "wool socks", Completed: true}}, c.Items)

	require.NoError(t, s.Clear())
	c, _ = s.Active()
	assert.Empty(t, c.Items)
}

func TestActive_ReturnsCopy(t *testing.T) {
	s, _ := openMem(t)
	_, _ = s.Create("a")
	require.NoError(t, s.AddItem("x"))

	c, _ := s.Active()
	c.Items[0].Text = "mutated"

	again, _ := s.Active()
	assert.Equal(t, "x", again.Items[0].Text)
}

func TestSave_AppendsNovelAndReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s, slot := openMem(t)

	first, err := s.Create("first") // id t0
	require.NoError(t, err)
	saved, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, saved.ID)
	require.Equal(t, 1, s.Len())

	_, err = s.Create("second") // id t0+2ms
	require.NoError(t, err)
	_, err = s.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	_, err = s.Load(0)
	require.NoError(t, err)
	require.NoError(t, s.AddItem("new item"))
	resaved, err := s.Save(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len(), "same id replaces in place")
	rows := s.List()
	assert.Equal(t, "first", rows[0].Title)
	assert.Equal(t, 1, rows[0].ItemCount)
	assert.Equal(t, "second", rows[1].Title)
	assert.NotEqual(t, saved.LastModified, resaved.LastModified, "save stamps a fresh lastModified")

	active, _ := s.Active()
	assert.Equal(t, resaved, active)

	persisted, err := store.NewCollection(slot).Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.Equal(t, []model.Item{{Text: "new item"}}, persisted[0].Items)
}

func TestEditsAfterLoad_DoNotTouchSavedUntilSave(t *testing.T) {
	ctx := context.Background()
	s, _ := openMem(t)
	_, _ = s.Create("a")
	_, err := s.Save(ctx)
	require.NoError(t, err)

	_, err = s.Load(0)
	require.NoError(t, err)
	require.NoError(t, s.AddItem("draft"))

	saved, err := s.Saved(0)
	require.NoError(t, err)
	assert.Empty(t, saved.Items)
}

func TestLoadAndDelete_IndexBounds(t *testing.T) {
	ctx := context.Background()
	s, _ := openMem(t)

	_, err := s.Load(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.Delete(ctx, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDelete_RemovesAndPersists(t *testing.T) {
	ctx := context.Background()
	s, slot := openMem(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(title)
		require.NoError(t, err)
		_, err = s.Save(ctx)
		require.NoError(t, err)
	}

	gone, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", gone.Title)

	rows := s.List()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Title)
	assert.Equal(t, "c", rows[1].Title)
	assert.Equal(t, 1, rows[1].Index)

	persisted, err := store.NewCollection(slot).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	active, ok := s.Active()
	require.True(t, ok, "delete leaves the active checklist alone")
	assert.Equal(t, "c", active.Title)
}

func TestOpen_DiscardsCorruptSlot(t *testing.T) {
	ctx := context.Background()
	slot := memstore.New()
	require.NoError(t, slot.Set(ctx, store.SlotKey, []byte("{not json")))

	s, err := Open(ctx, store.NewCollection(slot))
	require.NoError(t, err)
	assert.True(t, s.Recovered)
	assert.Empty(t, s.List())

	raw, err := slot.Get(ctx, store.SlotKey)
	require.NoError(t, err)
	assert.Nil(t, raw, "corrupt slot is deleted")
}

func TestOpen_MigratesLegacyEntries(t *testing.T) {
	ctx := context.Background()
	slot := memstore.New()
	require.NoError(t, slot.Set(ctx, store.SlotKey, []byte(`[{"id":9,"title":"old","items":[],"lastModified":1700000000000}]`)))

	s, err := Open(ctx, store.NewCollection(slot))
	require.NoError(t, err)
	rows := s.List()
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", rows[0].LastModified)
}

type failingSlot struct {
	*memstore.Store
	getErr, setErr error
}

func (f failingSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingSlot) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestOpen_ReadErrorIsReturned(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Open(context.Background(), store.NewCollection(failingSlot{Store: memstore.New(), getErr: boom}))
	require.ErrorIs(t, err, boom)
}

func TestSave_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read-only")
	s, err := Open(ctx, store.NewCollection(failingSlot{Store: memstore.New(), setErr: boom}))
	require.NoError(t, err)
	_, _ = s.Create("a")

	_, err = s.Save(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestImport_ReplacesActiveOrLeavesItUnchanged(t *testing.T) {
	s, _ := openMem(t)
	_, _ = s.Create("current")
	require.NoError(t, s.AddItem("keep me"))

	_, err := s.ImportBytes([]byte(`{"foo": 1}`))
	require.ErrorIs(t, err, transfer.ErrShape)
	active, _ := s.Active()
	assert.Equal(t, "current", active.Title)
	assert.Len(t, active.Items, 1)

	got, err := s.ImportBytes([]byte(`{"id":5,"title":"imported","items":[{"text":"a","completed":true}],"lastModified":"2024-01-01T00:00:00.000Z"}`))
	require.NoError(t, err)
	active, _ = s.Active()
	assert.Equal(t, got, active)
	assert.Equal(t, int64(5), active.ID)
}

func TestImport_FromNoActiveState(t *testing.T) {
	s, _ := openMem(t)

	_, err := s.ImportBytes([]byte(`{"title":"x","items":[]}`))
	require.NoError(t, err)
	assert.Equal(t, EditingChecklist, s.State())
}

func TestExportImport_ThroughFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := openMem(t)
	_, _ = s.Create("Round Trip")
	require.NoError(t, s.AddItem("one"))
	require.NoError(t, s.ToggleItem(0))
	want, _ := s.Active()

	path, err := s.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, _ = s.Create("other")
	got, err := s.Import(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRename(t *testing.T) {
	s, _ := openMem(t)
	_, _ = s.Create("a")

	require.ErrorIs(t, s.Rename("  "), ErrEmptyTitle)
	require.NoError(t, s.Rename(" b "))
	c, _ := s.Active()
	assert.Equal(t, "b", c.Title)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "no-active-checklist", NoActiveChecklist.String())
	assert.Equal(t, "editing-checklist", EditingChecklist.String())
}
