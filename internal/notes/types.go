package notes

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

// ActionItem is a task captured from the meeting. It has no identity of its
// own and lives only inside its Note.
type ActionItem struct {
	Text    string  `bson:"text" json:"text"`
	Owner   *string `bson:"owner" json:"owner"`
	DueDate *string `bson:"due_date" json:"due_date"`
}

// Note is the structured result of a transcript. It is immutable once stored.
type Note struct {
	ID          string       `bson:"-" json:"note_id,omitempty"`
	Summary     string       `bson:"summary" json:"summary"`
	ActionItems []ActionItem `bson:"action_items" json:"action_items"`
	Decisions   []string     `bson:"decisions" json:"decisions"`
	Keywords    []string     `bson:"keywords" json:"keywords"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}

// normalize replaces nil sequences so they encode as [] rather than null.
func (n *Note) normalize() {
	if n.ActionItems == nil {
		n.ActionItems = []ActionItem{}
	}
	if n.Decisions == nil {
		n.Decisions = []string{}
	}
	if n.Keywords == nil {
		n.Keywords = []string{}
	}
}

// ListResult is the paginated response of GET /api/notes.
type ListResult struct {
	Notes []*Note `json:"notes"`
	Count int     `json:"count"`
	Limit int     `json:"limit"`
	Skip  int     `json:"skip"`
}

// StorageError wraps any failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// errUnconfigured marks a repository without connection settings.
var errUnconfigured = errors.New("storage not configured")

// errInvalidID marks identifiers rejected before reaching the backend.
var errInvalidID = errors.New("invalid note ID format")

func invalidID(id string) error {
	return &StorageError{Op: fmt.Sprintf("Invalid note ID format: %s", id), Err: errInvalidID}
}
