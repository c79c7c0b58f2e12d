// Package server assembles the HTTP routes of the service.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"

	"autonotes/internal/notes"
	"autonotes/internal/web"
)

const serviceName = "AutoNotes API"

// Options configures New.
type Options struct {
	Version     string
	CORSOrigins []string
	MCP         *mcpserver.MCPServer
}

// New builds the root handler: REST API under /api, the HTML view under
// /notes, MCP under /mcp and the service metadata endpoints.
func New(svc *notes.Service, log *slog.Logger, opts Options) http.Handler {
	api := notes.NewHandler(svc, log)
	pages := web.NewHandler(svc, log)

	mux := http.NewServeMux()

	// REST API endpoints
	mux.HandleFunc("POST /api/notes", api.CreateNote)
	mux.HandleFunc("GET /api/notes", api.ListNotes)
	mux.HandleFunc("GET /api/notes/health", api.Health)
	mux.HandleFunc("GET /api/notes/{id}", api.GetNote)
	mux.HandleFunc("GET /api/notes/{id}/markdown", api.NoteMarkdown)
	mux.HandleFunc("DELETE /api/notes/{id}", api.DeleteNote)
	// "health" is not a note ID.
	mux.HandleFunc("DELETE /api/notes/health", api.NotFound)
	mux.HandleFunc("GET /api/notes/health/markdown", api.NotFound)
	mux.HandleFunc("/api/", api.NotFound)

	// Web UI (read-only)
	mux.HandleFunc("GET /notes", pages.NotesPage)
	mux.HandleFunc("GET /notes/{id}", pages.NotePage)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	if opts.MCP != nil {
		mcpHTTP := mcpserver.NewStreamableHTTPServer(opts.MCP)
		mux.Handle("POST /mcp", mcpHTTP)
		mux.Handle("GET /mcp", mcpHTTP)
		mux.Handle("DELETE /mcp", mcpHTTP)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": serviceName})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			api.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"service": serviceName,
			"version": opts.Version,
			"status":  "running",
			"endpoints": map[string]string{
				"health":        "/health",
				"notes_health":  "/api/notes/health",
				"create_note":   "POST /api/notes",
				"list_notes":    "GET /api/notes",
				"get_note":      "GET /api/notes/{id}",
				"note_markdown": "GET /api/notes/{id}/markdown",
				"delete_note":   "DELETE /api/notes/{id}",
				"web":           "/notes",
				"mcp":           "/mcp",
			},
		})
	})

	return requestLogger(log, withAPICORS(mux, opts.CORSOrigins))
}

// withAPICORS applies CORS to /api/ paths only.
func withAPICORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	api := c.Handler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (MCP over SSE) working through the wrapper.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// requestLogger tags each request with an X-Request-ID and logs it on
// completion.
func requestLogger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		log.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
