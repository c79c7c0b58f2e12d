// Package web serves the read-only HTML view of stored notes.
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"autonotes/internal/notes"
	"autonotes/views/models"
	"autonotes/views/pages"
)

const pageSize = 20

type Handler struct {
	svc *notes.Service
	md  goldmark.Markdown
	log *slog.Logger
}

func NewHandler(svc *notes.Service, log *slog.Logger) *Handler {
	return &Handler{
		svc: svc,
		// TaskList renders action items as checkboxes. Raw HTML in notes is
		// dropped by the default renderer.
		md:  goldmark.New(goldmark.WithExtensions(extension.TaskList)),
		log: log,
	}
}

// NotesPage handles GET /notes
func (h *Handler) NotesPage(w http.ResponseWriter, r *http.Request) {
	limit := min(max(1, parseInt(r.URL.Query().Get("limit"), pageSize)), notes.MaxLimit-1)
	skip := parseInt(r.URL.Query().Get("skip"), 0)

	// One extra row tells whether an older page exists.
	result, err := h.svc.List(r.Context(), limit+1, skip)
	if err != nil {
		h.log.Error("failed to list notes", "error", err)
		h.render(w, r, http.StatusInternalServerError, pages.ErrorPage("Error", "Notes could not be loaded."))
		return
	}

	list := result.Notes
	page := models.PageView{
		Limit:   limit,
		Skip:    result.Skip,
		HasPrev: result.Skip > 0,
	}
	if len(list) > limit {
		list = list[:limit]
		page.HasNext = true
	}

	h.render(w, r, http.StatusOK, pages.NotesPage(notesToViews(list), page))
}

// NotePage handles GET /notes/{id}
func (h *Handler) NotePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	note, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, notes.ErrNoteNotFound) {
		h.render(w, r, http.StatusNotFound, pages.ErrorPage("Not found", "Note "+id+" does not exist."))
		return
	}
	if err != nil {
		h.log.Error("failed to get note", "note_id", id, "error", err)
		h.render(w, r, http.StatusInternalServerError, pages.ErrorPage("Error", "The note could not be loaded."))
		return
	}

	h.render(w, r, http.StatusOK, pages.NotePage(noteToView(note), h.RenderMarkdown(notes.Markdown(note))))
}

// RenderMarkdown converts markdown content to HTML
func (h *Handler) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(content), &buf); err != nil {
		return templ.EscapeString(content)
	}
	return buf.String()
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

// --- View model converters ---

func noteToView(n *notes.Note) models.NoteView {
	items := make([]models.ActionItemView, len(n.ActionItems))
	for i, item := range n.ActionItems {
		items[i] = models.ActionItemView{Text: item.Text}
		if item.Owner != nil {
			items[i].Owner = *item.Owner
		}
		if item.DueDate != nil {
			items[i].DueDate = *item.DueDate
		}
	}
	return models.NoteView{
		ID:          n.ID,
		Summary:     n.Summary,
		ActionItems: items,
		Decisions:   n.Decisions,
		Keywords:    n.Keywords,
		CreatedAt:   n.CreatedAt,
	}
}

func notesToViews(list []*notes.Note) []models.NoteView {
	views := make([]models.NoteView, len(list))
	for i, n := range list {
		views[i] = noteToView(n)
	}
	return views
}

func parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
