package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/resumedoc/internal/render"
)

// Worker renders a single job.
type Worker struct {
	renderer render.Renderer
	log      *slog.Logger
	timeout  time.Duration
}

func NewWorker(renderer render.Renderer, log *slog.Logger, timeout time.Duration) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{renderer: renderer, log: log, timeout: timeout}
}

// Process renders the job's markdown and records the outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusRendering)
	start := time.Now()

	renderCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	pdf, err := w.renderer.Render(renderCtx, job.Markdown(), job.Layout)
	if err != nil {
		log.Error("render failed", "error", err)
		job.Fail(fmt.Sprintf("render: %s", err))
		return
	}
	if len(pdf) == 0 {
		log.Error("render produced no output")
		job.Fail("render: empty output")
		return
	}

	job.Complete(pdf)
	log.Info("render completed",
		"bytes", len(pdf),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
