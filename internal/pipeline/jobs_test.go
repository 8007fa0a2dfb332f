package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/resumedoc/internal/render"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob_HashCoversLayout(t *testing.T) {
	a := NewJob("doc", "# Jane", render.Layout{})
	b := NewJob("doc", "# Jane", render.DefaultLayout)
	c := NewJob("doc", "# Jane", render.Layout{PaperWidth: 8.27, PaperHeight: 11.69})
	if a.ContentHash != b.ContentHash {
		t.Error("expected zero layout to hash like the default layout")
	}
	if a.ContentHash == c.ContentHash {
		t.Error("expected different hashes for different paper sizes")
	}
	if a.ID == b.ID {
		t.Error("expected unique job ids")
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc", "# Jane", render.Layout{})

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusRendering)
	if job.Status != StatusRendering {
		t.Errorf("expected status %q, got %q", StatusRendering, job.Status)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance after SetStatus")
	}
	if _, ok := job.PDF(); ok {
		t.Error("expected no pdf before completion")
	}

	job.Complete([]byte("%PDF-1.4"))
	pdf, ok := job.PDF()
	if !ok || string(pdf) != "%PDF-1.4" {
		t.Errorf("expected pdf bytes after completion, got %q (ok=%v)", pdf, ok)
	}
	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Bytes != 8 {
		t.Errorf("expected completed snapshot with 8 bytes, got %+v", snap)
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("doc", "# Jane", render.Layout{})
	job.Fail("render: boom")
	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Error != "render: boom" {
		t.Errorf("expected error %q, got %q", "render: boom", snap.Error)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_FindCompleted(t *testing.T) {
	store := NewJobStore(time.Hour)
	queued := NewJob("doc", "# Jane", render.Layout{})
	store.Put(queued)
	if store.FindCompleted(queued.ContentHash) != nil {
		t.Fatal("expected no completed job yet")
	}

	done := NewJob("doc", "# Jane", render.Layout{})
	done.Complete([]byte("pdf"))
	store.Put(done)
	if got := store.FindCompleted(queued.ContentHash); got != done {
		t.Errorf("expected completed job %q, got %v", done.ID, got)
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 job removed, got %d", n)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
