package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"autonotes/internal/health"
	"autonotes/internal/llm"
	"autonotes/internal/schema"
)

// maxBodyBytes caps POST bodies well above the transcript limit.
const maxBodyBytes = 2 << 20

// Error categories used in the JSON error envelope.
const (
	CategoryValidation = "Validation error"
	CategorySchema     = "Schema violation"
	CategoryLLM        = "LLM service error"
	CategoryStorage    = "Storage error"
	CategoryNotFound   = "Not found"
	CategoryInternal   = "Internal server error"
)

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /api/notes/health.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Services map[string]bool          `json:"services"`
	Details  map[string]health.Status `json:"details"`
}

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	payload, err := schema.DecodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	note, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.jsonResponse(w, note, http.StatusOK)
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeNoteError(w, r, id, err)
		return
	}

	h.jsonResponse(w, note, http.StatusOK)
}

// NoteMarkdown handles GET /api/notes/{id}/markdown
func (h *Handler) NoteMarkdown(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeNoteError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(Markdown(note)))
}

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit := h.parseInt(r.URL.Query().Get("limit"), DefaultLimit)
	skip := h.parseInt(r.URL.Query().Get("skip"), 0)

	result, err := h.svc.List(r.Context(), limit, skip)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.jsonResponse(w, result, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeNoteError(w, r, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /api/notes/health. It always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())
	if !report.Healthy() {
		h.log.Warn("dependency unhealthy",
			"llm", report.LLM.State, "llm_detail", report.LLM.Detail,
			"storage", report.Storage.State, "storage_detail", report.Storage.Detail,
		)
	}

	h.jsonResponse(w, HealthResponse{
		Status: report.Overall(),
		Services: map[string]bool{
			"llm":     report.LLM.Healthy(),
			"storage": report.Storage.Healthy(),
		},
		Details: map[string]health.Status{
			"llm":     report.LLM,
			"storage": report.Storage,
		},
	}, http.StatusOK)
}

// NotFound answers unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, ErrorResponse{
		Error:   CategoryNotFound,
		Message: "The requested resource was not found",
	}, http.StatusNotFound)
}

// --- Helper methods ---

func (h *Handler) writeNoteError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, ErrNoteNotFound) {
		h.jsonError(w, CategoryNotFound, fmt.Sprintf("Note with ID '%s' not found", id), http.StatusNotFound)
		return
	}
	h.writeError(w, r, err)
}

// writeError maps a pipeline error to its status and category. Unknown
// errors are logged and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr     *schema.RequestError
		violation  *schema.Violation
		llmErr     *llm.Error
		storageErr *StorageError
	)

	switch {
	case errors.As(err, &reqErr):
		h.jsonError(w, CategoryValidation, reqErr.Message, http.StatusBadRequest)
	case errors.As(err, &violation):
		h.log.Error("llm response violated schema", "path", r.URL.Path, "error", err)
		h.jsonError(w, CategorySchema, violation.Error(), http.StatusInternalServerError)
	case errors.As(err, &llmErr):
		h.log.Error("llm request failed", "path", r.URL.Path, "kind", llmErr.Kind.String(), "error", err)
		h.jsonError(w, CategoryLLM, llmErr.Error(), http.StatusInternalServerError)
	case errors.Is(err, ErrNoteNotFound):
		h.jsonError(w, CategoryNotFound, "The requested resource was not found", http.StatusNotFound)
	case errors.As(err, &storageErr):
		h.log.Error("storage failure", "path", r.URL.Path, "error", err)
		h.jsonError(w, CategoryStorage, storageErr.Error(), http.StatusInternalServerError)
	default:
		h.log.Error("unexpected error", "path", r.URL.Path, "error", err)
		h.jsonError(w, CategoryInternal, "An unexpected error occurred while processing your request", http.StatusInternalServerError)
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, category, message string, status int) {
	h.jsonResponse(w, ErrorResponse{Error: category, Message: message}, status)
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
