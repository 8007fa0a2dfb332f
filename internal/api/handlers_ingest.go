package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/resumedoc/internal/parser"
	"github.com/dgallion1/resumedoc/internal/store"
)

type createDocumentRequest struct {
	Raw    string `json:"raw" validate:"required"`
	Format string `json:"format" validate:"omitempty,oneof=auto html htm markdown md json"`
	Title  string `json:"title" validate:"max=200"`
}

type documentResponse struct {
	*store.Record
	Fallback bool `json:"fallback,omitempty"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		s.createFromUpload(w, r)
		return
	}

	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	format, err := parser.ParseFormat(req.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := s.engine.Load(req.Raw, format)
	rec := &store.Record{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Format:   string(res.Format),
		Raw:      req.Raw,
		Document: res.Document,
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("document created", "doc_id", rec.ID, "format", res.Format, "sections", len(res.Document.Sections), "fallback", res.Fallback)
	writeJSON(w, http.StatusCreated, documentResponse{Record: rec, Fallback: res.Fallback})
}

func (s *Server) createFromUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	_, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, fallback, err := s.ingestFile(r.Context(), header, r.FormValue("title"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse{Record: rec, Fallback: fallback})
}

type batchResult struct {
	Filename string `json:"filename"`
	DocID    string `json:"doc_id,omitempty"`
	Sections int    `json:"sections,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]batchResult, len(files))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(max(s.cfg.MaxConcurrentIngest, 1))
	for i, fh := range files {
		g.Go(func() error {
			res := batchResult{Filename: sanitizeFilename(fh.Filename)}
			rec, fallback, err := s.ingestFile(ctx, fh, "")
			if err != nil {
				res.Error = err.Error()
			} else {
				res.DocID = rec.ID
				res.Sections = len(rec.Document.Sections)
				res.Fallback = fallback
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{"documents": results})
}

// ingestFile converts, parses and stores one uploaded file.
func (s *Server) ingestFile(ctx context.Context, fh *multipart.FileHeader, title string) (*store.Record, bool, error) {
	filename := sanitizeFilename(fh.Filename)
	if !s.engine.IsSupportedFile(filename) {
		return nil, false, invalid(fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, false, fmt.Errorf("open upload: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil {
		return nil, false, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, false, invalid(fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes))
	}

	src, res, err := s.engine.Ingest(bytes.NewReader(data), filename)
	if err != nil {
		return nil, false, invalid(err.Error())
	}
	if title == "" {
		title = src.Title
	}
	rec := &store.Record{
		ID:       uuid.NewString(),
		Title:    title,
		Format:   string(res.Format),
		Raw:      src.Raw,
		Document: res.Document,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, false, err
	}
	s.log.Info("document ingested",
		"doc_id", rec.ID,
		"filename", filename,
		"format", res.Format,
		"sections", len(res.Document.Sections),
		"fallback", res.Fallback,
	)
	return rec, res.Fallback, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
