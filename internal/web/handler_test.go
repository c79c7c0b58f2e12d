package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonotes/internal/notes"
)

type fixedGenerator struct{ reply string }

func (g fixedGenerator) Generate(context.Context, string) (map[string]any, error) {
	var data map[string]any
	err := json.Unmarshal([]byte(g.reply), &data)
	return data, err
}

const reply = `{"summary":"Ship <b>v2</b> by Friday.","action_items":[{"text":"Write changelog","owner":"Alice","due_date":null}],"decisions":["Ship v2"],"keywords":["v2"]}`

func newTestHandler(t *testing.T) (*Handler, *notes.Service, *http.ServeMux) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := notes.NewSQLiteRepo(filepath.Join(t.TempDir(), "web.db"))
	t.Cleanup(func() { repo.Close(context.Background()) })

	svc := notes.NewService(repo, fixedGenerator{reply: reply}, log)
	h := NewHandler(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /notes", h.NotesPage)
	mux.HandleFunc("GET /notes/{id}", h.NotePage)
	return h, svc, mux
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNotePage(t *testing.T) {
	_, svc, mux := newTestHandler(t)
	note, err := svc.CreateFromTranscript(context.Background(), "transcript")
	require.NoError(t, err)

	rec := get(mux, "/notes/"+note.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Summary</h2>")
	assert.Contains(t, body, `type="checkbox"`)
	assert.Contains(t, body, "Write changelog (owner: Alice)")
	assert.NotContains(t, body, "<b>v2</b>", "raw HTML from the LLM is not rendered")
}

func TestNotePageErrors(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := get(mux, "/notes/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")

	rec = get(mux, "/notes/bogus")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotesPagePagination(t *testing.T) {
	_, svc, mux := newTestHandler(t)
	for i := 0; i < 3; i++ {
		_, err := svc.CreateFromTranscript(context.Background(), fmt.Sprintf("t%d", i))
		require.NoError(t, err)
	}

	first := get(mux, "/notes?limit=2").Body.String()
	assert.Contains(t, first, "Older &rarr;")
	assert.NotContains(t, first, "Newer")
	assert.Contains(t, first, "Ship &lt;b&gt;v2&lt;/b&gt; by Friday.")

	second := get(mux, "/notes?limit=2&skip=2").Body.String()
	assert.Contains(t, second, "&larr; Newer")
	assert.NotContains(t, second, "Older")
}

func TestNotesPageEmpty(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := get(mux, "/notes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No notes yet.")
}

func TestRenderMarkdown(t *testing.T) {
	h, _, _ := newTestHandler(t)

	assert.Equal(t, "<h1>Title</h1>\n", h.RenderMarkdown("# Title"))
}
