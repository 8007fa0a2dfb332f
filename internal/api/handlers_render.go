package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumedoc/internal/pipeline"
	"github.com/dgallion1/resumedoc/internal/render"
	"github.com/dgallion1/resumedoc/internal/resume"
)

type renderRequest struct {
	Layout          render.Layout `json:"layout"`
	SuppressTitles  []string      `json:"suppress_titles"`
	PageBreakBefore []string      `json:"page_break_before"`
}

// handleSubmitRender exports the document and queues a PDF render. The body
// is optional.
func (s *Server) handleSubmitRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	layout := req.Layout.OrDefault()
	if err := layout.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	md := s.engine.Export(rec.Document, resume.ExportOptions{
		SuppressTitles:  req.SuppressTitles,
		PageBreakBefore: req.PageBreakBefore,
	})

	job := pipeline.NewJob(rec.ID, md, layout)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/renders/%s/status", snap.ID),
	})
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	pdf, ok := job.PDF()
	if !ok {
		snap := job.Snapshot()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "render not completed",
			"status": snap.Status,
		})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="resume-%s.pdf"`, job.DocID))
	w.Write(pdf)
}
