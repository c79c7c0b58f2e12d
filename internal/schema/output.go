package schema

import (
	"fmt"
	"strings"
)

// Violation is a contract breach in the LLM's JSON reply. Index is the
// offending element for sequence fields and -1 otherwise.
type Violation struct {
	Field  string
	Index  int
	Reason string
}

func (v *Violation) Error() string {
	if v.Index >= 0 {
		return fmt.Sprintf("LLM response field '%s' at index %d %s", v.Field, v.Index, v.Reason)
	}
	return fmt.Sprintf("LLM response field '%s' %s", v.Field, v.Reason)
}

func violation(field string, index int, reason string) error {
	return &Violation{Field: field, Index: index, Reason: reason}
}

// ValidateLLMOutput checks that data has the meeting note shape: a non-empty
// summary, action items with a string text, and string decisions and
// keywords. Extra keys are ignored. The keyword count is not checked.
func ValidateLLMOutput(data any) error {
	obj, ok := data.(map[string]any)
	if !ok || obj == nil {
		return violation("(root)", -1, "must be a JSON object")
	}

	for _, field := range []string{"summary", "action_items", "decisions", "keywords"} {
		if _, ok := obj[field]; !ok {
			return violation(field, -1, "is missing (required field)")
		}
	}

	summary, ok := obj["summary"].(string)
	if !ok {
		return violation("summary", -1, "must be a string")
	}
	if strings.TrimSpace(summary) == "" {
		return violation("summary", -1, "cannot be empty")
	}

	items, ok := obj["action_items"].([]any)
	if !ok {
		return violation("action_items", -1, "must be a list")
	}
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return violation("action_items", i, "must be an object")
		}
		text, present := item["text"]
		if !present {
			return violation("action_items", i, "is missing 'text'")
		}
		str, ok := text.(string)
		if !ok {
			return violation("action_items", i, "'text' must be a string")
		}
		if strings.TrimSpace(str) == "" {
			return violation("action_items", i, "'text' cannot be empty")
		}
		for _, opt := range []string{"owner", "due_date"} {
			if v, present := item[opt]; present && v != nil {
				if _, ok := v.(string); !ok {
					return violation("action_items", i, fmt.Sprintf("'%s' must be a string or null", opt))
				}
			}
		}
	}

	if err := stringList(obj, "decisions"); err != nil {
		return err
	}
	return stringList(obj, "keywords")
}

func stringList(obj map[string]any, field string) error {
	list, ok := obj[field].([]any)
	if !ok {
		return violation(field, -1, "must be a list")
	}
	for i, v := range list {
		if _, ok := v.(string); !ok {
			return violation(field, i, "must be a string")
		}
	}
	return nil
}
