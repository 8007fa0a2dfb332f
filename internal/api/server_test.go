package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/resumedoc/internal/config"
	"github.com/dgallion1/resumedoc/internal/pipeline"
	"github.com/dgallion1/resumedoc/internal/render"
	"github.com/dgallion1/resumedoc/internal/resume"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/store"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

const testKey = "test-key"

const sampleResume = "# Jane Doe\njane@x.com | 555-1234\n## Experience\n### Acme Corp | Engineer | 2020-2023\n- Built X\n- Shipped Y\n"

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, markdown string, _ render.Layout) ([]byte, error) {
	return []byte("%PDF-1.4 " + markdown), nil
}

type stubClient struct{ text string }

func (c stubClient) Suggest(context.Context, string) (string, error) {
	return c.text, nil
}

func newTestServer(t *testing.T, client suggest.Client) *Server {
	t.Helper()
	cfg := config.Config{
		ResumedocAPIKey:     testKey,
		MaxUploadBytes:      1 << 20,
		MaxConcurrentIngest: 2,
		RenderWorkers:       1,
		MaxRenderQueue:      4,
		RenderTimeout:       time.Second,
		RenderJobTTL:        time.Hour,
		SuppressTitles:      []string{"Professional Summary"},
	}
	engine := resume.New(resume.Options{SuppressTitles: cfg.SuppressTitles}, nil)
	orch := pipeline.NewOrchestrator(cfg, stubRenderer{}, nil)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	deps := Deps{
		Engine:       engine,
		Store:        store.NewMemoryStore(time.Hour),
		Orchestrator: orch,
		Stats:        suggest.NewLLMStats(time.Hour),
		Model:        "test-model",
	}
	if client != nil {
		deps.Generator = suggest.NewGenerator(client, engine.Merger(), deps.Stats, nil)
	}
	return NewServer(deps, nil, cfg)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

type docBody struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Format   string            `json:"format"`
	Document *section.Document `json:"document"`
}

func createDoc(t *testing.T, s *Server) docBody {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/documents", map[string]string{"raw": sampleResume, "title": "Jane"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out docBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.ID)
	return out
}

func roleIDs(doc *section.Document) []string {
	var out []string
	for _, s := range doc.Sections {
		if s.Type == section.TypeJobRole {
			out = append(out, s.ID)
		}
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGetListDelete(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)
	assert.Equal(t, "markdown", doc.Format)
	assert.Equal(t, section.TypeHeader, doc.Document.Sections[0].Type)
	assert.Len(t, roleIDs(doc.Document), 1)

	rec := do(t, s, http.MethodGet, "/api/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), doc.ID)

	rec = do(t, s, http.MethodDelete, "/api/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/documents", map[string]string{"title": "no raw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/documents", map[string]string{"raw": "x", "format": "latex"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLastRoleConflicts(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)
	roleID := roleIDs(doc.Document)[0]

	rec := do(t, s, http.MethodDelete, "/api/documents/"+doc.ID+"/sections/"+roleID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(section.ReasonLastJobRole), body["reason"])

	rec = do(t, s, http.MethodDelete, "/api/documents/"+doc.ID+"/sections/header", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/documents/"+doc.ID+"/sections/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddMoveAndDeleteRole(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)
	first := roleIDs(doc.Document)[0]

	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/sections", map[string]string{
		"type":    "job_role",
		"title":   "Analyst",
		"content": "### Analyst, Initech | 2018\n- Wrote reports",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added sectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, section.ExperienceID, added.Section.ParentID)
	assert.Equal(t, []string{first, added.Section.ID}, roleIDs(added.Document))

	rec = do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/sections/"+added.Section.ID+"/move", map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved struct {
		Moved    bool              `json:"moved"`
		Document *section.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.True(t, moved.Moved)
	assert.Equal(t, []string{added.Section.ID, first}, roleIDs(moved.Document))

	rec = do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/sections/"+first+"/move", map[string]string{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/documents/"+doc.ID+"/sections/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSectionJSONUsesSnakeCase(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)

	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/sections", map[string]string{
		"type":      "job_role",
		"title":     "Analyst",
		"content":   "### Analyst, Initech | 2018\n- Wrote reports",
		"parent_id": section.ExperienceID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw struct {
		Section map[string]any `json:"section"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, section.ExperienceID, raw.Section["parent_id"])
	assert.NotContains(t, raw.Section, "parentId")

	rec = do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/suggestions", map[string]any{
		"target":  "experience",
		"content": "- Automated reports",
		"hints":   map[string]string{"direct_role_id": raw.Section["id"].(string)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var merged map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
	assert.Equal(t, raw.Section["id"], merged["section_id"])
}

func TestUpdateSection(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)

	rec := do(t, s, http.MethodPut, "/api/documents/"+doc.ID+"/sections/header", map[string]string{
		"content": "<h1>Jane Q. Doe</h1><p>jane@x.com</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out sectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Section.Content, "Jane Q. Doe")
	assert.Equal(t, section.TypeHeader, out.Section.Type)
}

func TestApplySuggestionAndExport(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)

	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/suggestions", map[string]any{
		"target":  "summary",
		"content": "Engineer who ships reliable systems.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res mergeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Created)
	assert.Equal(t, section.SummaryID, res.SectionID)
	assert.Equal(t, section.SummaryID, res.Document.Sections[1].ID)

	rec = do(t, s, http.MethodGet, "/api/documents/"+doc.ID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	md := rec.Body.String()
	assert.True(t, strings.HasPrefix(md, "# Jane Doe"))
	assert.Contains(t, md, "Engineer who ships reliable systems.")
	assert.NotContains(t, md, "## Professional Summary")

	rec = do(t, s, http.MethodGet, "/api/documents/"+doc.ID+"/export?suppress=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Professional Summary")

	rec = do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/suggestions", map[string]any{
		"target": "header", "content": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateSuggestion(t *testing.T) {
	s := newTestServer(t, stubClient{text: `{"bullets": ["Cut deploy time by half", "Led the billing migration"]}`})
	doc := createDoc(t, s)

	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/suggestions/generate", map[string]any{
		"target": "experience",
		"apply":  true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Applied bool          `json:"applied"`
		Result  mergeResponse `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Applied)
	got, ok := out.Result.Document.Find(out.Result.SectionID)
	require.True(t, ok)
	assert.Contains(t, got.Content, "<li>Cut deploy time by half</li>")
	assert.NotContains(t, got.Content, "Built X")

	rec = do(t, s, http.MethodGet, "/api/stats/llm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestGenerateWithoutClient(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)
	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/suggestions/generate", map[string]any{"target": "summary"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRenderFlow(t *testing.T) {
	s := newTestServer(t, nil)
	doc := createDoc(t, s)

	rec := do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/renders", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var sub map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	jobID, _ := sub["job_id"].(string)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, "/api/renders/"+jobID+"/status", nil)
		return strings.Contains(rec.Body.String(), `"status":"completed"`)
	}, 2*time.Second, 10*time.Millisecond)

	rec = do(t, s, http.MethodGet, "/api/renders/"+jobID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-1.4 # Jane Doe"))

	rec = do(t, s, http.MethodGet, "/api/renders/unknown/pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/documents/"+doc.ID+"/renders", map[string]any{
		"layout": map[string]float64{"margin": 9},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchUpload(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "jane.md")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(sampleResume))
	fw, err = mw.CreateFormFile("files", "sheet.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("a,b"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/batch", &buf)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Documents []batchResult `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Documents, 2)
	assert.Equal(t, "jane.md", out.Documents[0].Filename)
	assert.NotEmpty(t, out.Documents[0].DocID)
	assert.Empty(t, out.Documents[0].Error)
	assert.Contains(t, out.Documents[1].Error, "unsupported file type")

	rec = do(t, s, http.MethodGet, "/api/documents/"+out.Documents[0].DocID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc docBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "jane", doc.Title)
}
