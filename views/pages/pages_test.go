package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonotes/views/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestNotesPageEscapesFields(t *testing.T) {
	note := models.NoteView{
		ID:          "n1",
		Summary:     `"quoted" & <i>tagged</i>`,
		ActionItems: []models.ActionItemView{{Text: "a"}, {Text: "b"}},
		Decisions:   []string{"d"},
		Keywords:    []string{"<script>"},
		CreatedAt:   time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
	}
	body := render(t, NotesPage([]models.NoteView{note}, models.PageView{Limit: 10, Skip: 10, HasPrev: true, HasNext: true}))

	assert.Contains(t, body, "&#34;quoted&#34; &amp; &lt;i&gt;tagged&lt;/i&gt;")
	assert.Contains(t, body, `<span class="kw">&lt;script&gt;</span>`)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `<a href="/notes/n1">2026-03-04 05:06 UTC</a>`)
	assert.Contains(t, body, "2 action items · 1 decisions")
	assert.Contains(t, body, `href="/notes?limit=10&amp;skip=0"`)
	assert.Contains(t, body, `href="/notes?limit=10&amp;skip=20"`)
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
}

func TestNotePageKeepsRenderedHTML(t *testing.T) {
	note := models.NoteView{ID: "n1", CreatedAt: time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)}
	body := render(t, NotePage(note, "<h2>Summary</h2>\n"))

	assert.Contains(t, body, "<title>2026-03-04 05:06 UTC · AutoNotes</title>")
	assert.Contains(t, body, "<h2>Summary</h2>\n")
	assert.Contains(t, body, `href="/api/notes/n1/markdown"`)
}

func TestErrorPageEscapesMessage(t *testing.T) {
	body := render(t, ErrorPage("Not found", "Note <x> does not exist."))

	assert.Contains(t, body, "<h2>Not found</h2>")
	assert.Contains(t, body, "Note &lt;x&gt; does not exist.")
}
