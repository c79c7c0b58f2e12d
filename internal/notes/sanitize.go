package notes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sanitize maps validated LLM output to a Note in canonical form. It does not
// re-check types: data must already have passed schema.ValidateLLMOutput.
func Sanitize(data map[string]any) *Note {
	// A Caser is stateful, so each call gets its own.
	lower := cases.Lower(language.Und)
	n := &Note{
		Summary:     strings.TrimSpace(data["summary"].(string)),
		ActionItems: []ActionItem{},
		Decisions:   []string{},
		Keywords:    []string{},
	}

	for _, raw := range data["action_items"].([]any) {
		item := raw.(map[string]any)
		n.ActionItems = append(n.ActionItems, ActionItem{
			Text:    strings.TrimSpace(item["text"].(string)),
			Owner:   optional(item["owner"]),
			DueDate: optional(item["due_date"]),
		})
	}
	for _, d := range data["decisions"].([]any) {
		n.Decisions = append(n.Decisions, strings.TrimSpace(d.(string)))
	}
	for _, k := range data["keywords"].([]any) {
		n.Keywords = append(n.Keywords, lower.String(strings.TrimSpace(k.(string))))
	}
	return n
}

// optional trims a string field, collapsing absent, null and blank to nil.
func optional(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
