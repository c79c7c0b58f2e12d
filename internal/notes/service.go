package notes

import (
	"context"
	"log/slog"

	"autonotes/internal/health"
	"autonotes/internal/llm"
	"autonotes/internal/schema"
)

// Pagination bounds for List.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Repository persists notes. IDs are opaque, store-assigned strings.
// GetByID returns ErrNoteNotFound for a well-formed ID with no document;
// every other failure is a *StorageError.
type Repository interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Insert(ctx context.Context, n *Note) (string, error)
	GetByID(ctx context.Context, id string) (*Note, error)
	List(ctx context.Context, limit, skip int) ([]*Note, error)
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) health.Status
}

// Checker checks the LLM provider.
type Checker interface {
	Check(ctx context.Context) health.Status
}

type Service struct {
	repo Repository
	gen  llm.Generator
	log  *slog.Logger
}

func NewService(repo Repository, gen llm.Generator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, gen: gen, log: log}
}

// Create runs the note pipeline for a decoded request payload.
func (s *Service) Create(ctx context.Context, payload map[string]any) (*Note, error) {
	transcript, err := schema.ValidateRequest(payload)
	if err != nil {
		return nil, err
	}
	return s.CreateFromTranscript(ctx, transcript)
}

// CreateFromTranscript runs the pipeline from an already-validated
// transcript: generate, sanitize, persist, read back.
func (s *Service) CreateFromTranscript(ctx context.Context, transcript string) (*Note, error) {
	data, err := s.gen.Generate(ctx, transcript)
	if err != nil {
		return nil, err
	}

	note := Sanitize(data)

	id, err := s.repo.Insert(ctx, note)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		// The document exists but the caller is told the create failed.
		s.log.Error("read-back after insert failed", "note_id", id, "error", err)
		return nil, storageErr("Failed to read back saved note "+id, err)
	}

	s.log.Info("note created",
		"note_id", id,
		"action_items", len(stored.ActionItems),
		"decisions", len(stored.Decisions),
		"keywords", len(stored.Keywords),
	)
	return stored, nil
}

// Get retrieves a note by ID
func (s *Service) Get(ctx context.Context, id string) (*Note, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of notes newest first. limit is clamped to
// [1, MaxLimit] and skip to >= 0.
func (s *Service) List(ctx context.Context, limit, skip int) (*ListResult, error) {
	limit = min(max(1, limit), MaxLimit)
	skip = max(0, skip)

	list, err := s.repo.List(ctx, limit, skip)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Note{}
	}
	return &ListResult{Notes: list, Count: len(list), Limit: limit, Skip: skip}, nil
}

// Delete removes a note by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoteNotFound
	}
	s.log.Info("note deleted", "note_id", id)
	return nil
}

// Health checks both dependencies. The LLM check costs a real generation.
func (s *Service) Health(ctx context.Context) health.Report {
	r := health.Report{Storage: s.repo.Ping(ctx)}
	if c, ok := s.gen.(Checker); ok {
		r.LLM = c.Check(ctx)
	} else {
		r.LLM = health.Fail(health.StateUnhealthy, "generator has no health check")
	}
	return r
}
