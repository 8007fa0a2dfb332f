package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/resumedoc/internal/section"
)

func sampleRecord(id string) *Record {
	return &Record{
		ID:       id,
		Title:    "Jane Doe",
		Format:   "markdown",
		Raw:      "# Jane Doe",
		Document: section.DefaultDocument(),
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*MemoryStore, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = c.now
	return s, c
}

func TestMemoryStore_PutGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)
	rec := sampleRecord("d1")
	require.NoError(t, s.Put(ctx, rec))

	rec.Document.Sections[0].Content = "mutated after put"
	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated after put", got.Document.Sections[0].Content)
	assert.False(t, got.CreatedAt.IsZero())

	got.Document.Sections[0].Content = "mutated after get"
	again, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated after get", again.Document.Sections[0].Content)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "nope"), ErrNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(time.Hour)
	require.NoError(t, s.Put(ctx, sampleRecord("d1")))

	c.t = c.t.Add(time.Minute)
	got, err := s.Update(ctx, "d1", func(r *Record) error {
		r.Title = "Renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, c.t, got.UpdatedAt)

	boom := errors.New("boom")
	_, err = s.Update(ctx, "d1", func(r *Record) error {
		r.Title = "Lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	stored, _ := s.Get(ctx, "d1")
	assert.Equal(t, "Renamed", stored.Title, "failed update is not saved")

	_, err = s.Update(ctx, "missing", func(*Record) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTLEviction(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(time.Hour)
	require.NoError(t, s.Put(ctx, sampleRecord("read")))
	require.NoError(t, s.Put(ctx, sampleRecord("idle")))

	// Reading keeps a record alive for another TTL.
	c.t = c.t.Add(50 * time.Minute)
	_, err := s.Get(ctx, "read")
	require.NoError(t, err)

	c.t = c.t.Add(20 * time.Minute)
	assert.Equal(t, 1, s.Cleanup())
	_, err = s.Get(ctx, "idle")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "read")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Cleanup())
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(0)
	require.NoError(t, s.Put(ctx, sampleRecord("a")))
	c.t = c.t.Add(time.Second)
	require.NoError(t, s.Put(ctx, sampleRecord("b")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, len(section.DefaultDocument().Sections), list[0].Sections)
}
