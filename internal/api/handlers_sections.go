package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/store"
)

type addSectionRequest struct {
	Type     string `json:"type" validate:"required"`
	Title    string `json:"title" validate:"max=200"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

type updateSectionRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
}

type moveSectionRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type sectionResponse struct {
	Section  section.Section   `json:"section"`
	Document *section.Document `json:"document"`
}

// editDocument runs fn through the engine inside an atomic store update.
func (s *Server) editDocument(ctx context.Context, docID string, fn func(*hierarchy.Manager) error) (*store.Record, error) {
	return s.store.Update(ctx, docID, func(rec *store.Record) error {
		doc, err := s.engine.Edit(rec.Document, fn)
		if err != nil {
			return err
		}
		rec.Document = doc
		return nil
	})
}

// handleAddSection adds a top-level section, or a child when parent_id is
// set. Job roles default to the experience anchor.
func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	var req addSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	typ, ok := section.ParseType(req.Type)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown section type: %s", req.Type), http.StatusBadRequest)
		return
	}
	content, err := contentHTML(req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	parentID := req.ParentID
	if parentID == "" && typ == section.TypeJobRole {
		parentID = section.ExperienceID
	}

	var added section.Section
	rec, err := s.editDocument(r.Context(), chi.URLParam(r, "docID"), func(m *hierarchy.Manager) error {
		sec := section.Section{Type: typ, Title: req.Title, Content: content}
		var err error
		if parentID != "" {
			added, err = m.AddChild(parentID, sec)
		} else {
			added, err = m.AddSection(sec)
		}
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if got, ok := rec.Document.Find(added.ID); ok {
		added = got
	}
	writeJSON(w, http.StatusCreated, sectionResponse{Section: added, Document: rec.Document})
}

// handleUpdateSection applies an editor change. Omitted fields keep their
// current value.
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var req updateSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sectionID := chi.URLParam(r, "sectionID")

	rec, err := s.editDocument(r.Context(), chi.URLParam(r, "docID"), func(m *hierarchy.Manager) error {
		cur, ok := m.Document().Find(sectionID)
		if !ok {
			return &section.NotFoundError{ID: sectionID}
		}
		title, content := cur.Title, cur.Content
		if req.Title != nil {
			title = *req.Title
		}
		if req.Content != nil {
			var err error
			if content, err = contentHTML(*req.Content); err != nil {
				return err
			}
		}
		_, err := m.Update(sectionID, title, content)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	updated, _ := rec.Document.Find(sectionID)
	writeJSON(w, http.StatusOK, sectionResponse{Section: updated, Document: rec.Document})
}

func (s *Server) handleMoveSection(w http.ResponseWriter, r *http.Request) {
	var req moveSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sectionID := chi.URLParam(r, "sectionID")

	var moved bool
	rec, err := s.editDocument(r.Context(), chi.URLParam(r, "docID"), func(m *hierarchy.Manager) error {
		var err error
		if req.Direction == "up" {
			moved, err = m.MoveUp(sectionID)
		} else {
			moved, err = m.MoveDown(sectionID)
		}
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "document": rec.Document})
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	rec, err := s.editDocument(r.Context(), chi.URLParam(r, "docID"), func(m *hierarchy.Manager) error {
		return m.Remove(sectionID)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("section deleted", "doc_id", rec.ID, "section_id", sectionID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": sectionID, "document": rec.Document})
}

// contentHTML accepts editor content as HTML or Markdown.
func contentHTML(content string) (string, error) {
	if content == "" || markup.LooksLikeHTML(content) {
		return content, nil
	}
	out, err := markup.MarkdownToHTML(content)
	if err != nil {
		return "", invalid("invalid markdown content: " + err.Error())
	}
	return out, nil
}
