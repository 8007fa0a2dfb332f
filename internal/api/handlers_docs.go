package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumedoc/internal/resume"
)

// handleListDocuments lists stored documents, most recently updated first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(r.Context(), docID); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("document deleted", "doc_id", docID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

// handleExport serializes a document to Markdown. "suppress" overrides the
// configured suppression list (present but empty suppresses nothing) and
// "page_break" lists section ids preceded by a page break.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := exportOptions(r)
	md := s.engine.Export(rec.Document, opts)

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, map[string]string{"doc_id": rec.ID, "markdown": md})
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func exportOptions(r *http.Request) resume.ExportOptions {
	q := r.URL.Query()
	var opts resume.ExportOptions
	if q.Has("suppress") {
		opts.SuppressTitles = splitList(q.Get("suppress"))
	}
	if q.Has("page_break") {
		opts.PageBreakBefore = splitList(q.Get("page_break"))
	}
	return opts
}

// splitList splits a comma list; the result is never nil.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
