package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/store"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

type applySuggestionRequest struct {
	Target  string        `json:"target" validate:"required"`
	Content string        `json:"content" validate:"required"`
	Hints   suggest.Hints `json:"hints"`
}

type generateSuggestionRequest struct {
	Target         string        `json:"target" validate:"required,oneof=summary experience job_role"`
	JobDescription string        `json:"job_description" validate:"max=20000"`
	Hints          suggest.Hints `json:"hints"`
	Apply          bool          `json:"apply"`
}

type mergeResponse struct {
	SectionID string            `json:"section_id"`
	Created   bool              `json:"created"`
	Changed   bool              `json:"changed"`
	Document  *section.Document `json:"document"`
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req applySuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	target, err := suggest.ParseTarget(req.Target)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.merge(r, target, req.Content, req.Hints)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGenerateSuggestion asks the model for new content. With apply set
// the validated suggestion is merged into the stored document.
func (s *Server) handleGenerateSuggestion(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		jsonError(w, "suggestion generation is not configured", http.StatusServiceUnavailable)
		return
	}
	var req generateSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	target, err := suggest.ParseTarget(req.Target)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sug, err := s.generator.Generate(r.Context(), rec.Document, suggest.Request{
		Target:         target,
		Hints:          req.Hints,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := map[string]any{"suggestion": sug, "html": sug.HTML(), "applied": false}
	if req.Apply {
		res, err := s.merge(r, target, sug.HTML(), req.Hints)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out["applied"] = true
		out["result"] = res
	}
	writeJSON(w, http.StatusOK, out)
}

// merge applies content to the latest stored version of the document.
func (s *Server) merge(r *http.Request, target section.Type, content string, hints suggest.Hints) (mergeResponse, error) {
	var res suggest.MergeResult
	rec, err := s.store.Update(r.Context(), chi.URLParam(r, "docID"), func(rec *store.Record) error {
		var err error
		res, err = s.engine.ApplySuggestion(rec.Document, target, content, hints)
		if err != nil {
			return err
		}
		rec.Document = res.Document
		return nil
	})
	if err != nil {
		return mergeResponse{}, err
	}
	s.log.Info("suggestion applied",
		"doc_id", rec.ID,
		"target", string(target),
		"section_id", res.SectionID,
		"created", res.Created,
		"changed", res.Changed,
	)
	return mergeResponse{SectionID: res.SectionID, Created: res.Created, Changed: res.Changed, Document: rec.Document}, nil
}
