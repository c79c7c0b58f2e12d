package models

import "time"

// NoteView represents a note for template rendering
type NoteView struct {
	ID          string
	Summary     string
	ActionItems []ActionItemView
	Decisions   []string
	Keywords    []string
	CreatedAt   time.Time
}

// ActionItemView represents one action item; empty Owner/DueDate mean unset
type ActionItemView struct {
	Text    string
	Owner   string
	DueDate string
}

// PageView carries listing pagination state
type PageView struct {
	Limit   int
	Skip    int
	HasPrev bool
	HasNext bool
}

// PrevSkip is the skip value of the previous page
func (p PageView) PrevSkip() int {
	return max(0, p.Skip-p.Limit)
}

// NextSkip is the skip value of the next page
func (p PageView) NextSkip() int {
	return p.Skip + p.Limit
}
