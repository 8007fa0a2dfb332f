package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/resumedoc/internal/config"
	"github.com/dgallion1/resumedoc/internal/render"
)

type fakeRenderer struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (f *fakeRenderer) Render(ctx context.Context, markdown string, layout render.Layout) ([]byte, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + markdown), nil
}

func testConfig() config.Config {
	return config.Config{
		RenderWorkers:  1,
		MaxRenderQueue: 4,
		RenderTimeout:  time.Second,
		RenderJobTTL:   time.Hour,
	}
}

func waitFor(t *testing.T, job *Job, want JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected status %q, got %q", want, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_RendersJob(t *testing.T) {
	r := &fakeRenderer{}
	o := NewOrchestrator(testConfig(), r, nil)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("doc-1", "# Jane", render.Layout{})
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, job, StatusCompleted)

	pdf, ok := o.GetJob(job.ID).PDF()
	if !ok || string(pdf) != "%PDF # Jane" {
		t.Errorf("expected rendered pdf, got %q", pdf)
	}
}

func TestOrchestrator_ReusesCompletedRender(t *testing.T) {
	r := &fakeRenderer{}
	o := NewOrchestrator(testConfig(), r, nil)
	o.Start(context.Background())
	defer o.Stop()

	first := NewJob("doc-1", "# Jane", render.Layout{})
	if err := o.Submit(first); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, first, StatusCompleted)

	second := NewJob("doc-1", "# Jane", render.Layout{})
	if err := o.Submit(second); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.Snapshot().Status != StatusCompleted {
		t.Errorf("expected reused job to complete immediately, got %q", second.Snapshot().Status)
	}
	if n := r.calls.Load(); n != 1 {
		t.Errorf("expected 1 render call, got %d", n)
	}
}

func TestOrchestrator_RenderFailure(t *testing.T) {
	r := &fakeRenderer{err: errors.New("chrome missing")}
	o := NewOrchestrator(testConfig(), r, nil)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("doc-1", "# Jane", render.Layout{})
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitFor(t, job, StatusFailed)
	if snap.Error != "render: chrome missing" {
		t.Errorf("expected render error, got %q", snap.Error)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRenderQueue = 1
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, &fakeRenderer{}, nil)

	if err := o.Submit(NewJob("doc", "# A", render.Layout{})); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	job := NewJob("doc", "# B", render.Layout{})
	err := o.Submit(job)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Error != "queue_full" {
		t.Errorf("expected failed queue_full job, got %+v", snap)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), &fakeRenderer{}, nil)
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob("doc", "# A", render.Layout{})
	if err := o.Submit(job); err == nil {
		t.Fatal("expected error after stop")
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed job, got %q", job.Snapshot().Status)
	}
}
