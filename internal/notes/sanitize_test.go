package notes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonotes/internal/schema"
)

func llmOutput(t *testing.T, s string) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &data))
	require.NoError(t, schema.ValidateLLMOutput(data))
	return data
}

func TestSanitize(t *testing.T) {
	data := llmOutput(t, `{
		"summary": "  Team agreed to ship v2.  ",
		"action_items": [
			{"text": " Write changelog ", "owner": " Alice ", "due_date": "  "},
			{"text": "Book room", "owner": null},
			{"text": "Ping legal", "due_date": "2025-11-20"}
		],
		"decisions": ["  Ship v2 by Friday "],
		"keywords": [" V2 ", "RELEASE", "Ünïcode", "changelog", "Friday"],
		"extra": true
	}`)

	n := Sanitize(data)

	assert.Equal(t, "Team agreed to ship v2.", n.Summary)
	require.Len(t, n.ActionItems, 3)

	assert.Equal(t, "Write changelog", n.ActionItems[0].Text)
	require.NotNil(t, n.ActionItems[0].Owner)
	assert.Equal(t, "Alice", *n.ActionItems[0].Owner)
	assert.Nil(t, n.ActionItems[0].DueDate, "blank due_date collapses to nil")

	assert.Nil(t, n.ActionItems[1].Owner)
	assert.Nil(t, n.ActionItems[1].DueDate, "absent due_date is nil")

	require.NotNil(t, n.ActionItems[2].DueDate)
	assert.Equal(t, "2025-11-20", *n.ActionItems[2].DueDate)

	assert.Equal(t, []string{"Ship v2 by Friday"}, n.Decisions)
	assert.Equal(t, []string{"v2", "release", "ünïcode", "changelog", "friday"}, n.Keywords)
	assert.Empty(t, n.ID)
	assert.True(t, n.CreatedAt.IsZero())
}

func TestSanitizeEmptySequences(t *testing.T) {
	n := Sanitize(llmOutput(t, `{"summary":"s","action_items":[],"decisions":[],"keywords":[]}`))

	body, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s","action_items":[],"decisions":[],"keywords":[],"created_at":"0001-01-01T00:00:00Z"}`, string(body))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	once := Sanitize(llmOutput(t, `{
		"summary": " Summary ",
		"action_items": [{"text": " a ", "owner": "", "due_date": " tomorrow "}],
		"decisions": [" d "],
		"keywords": [" K1 ", "k2"]
	}`))

	// Feed the sanitized note back through as LLM output.
	body, err := json.Marshal(once)
	require.NoError(t, err)
	twice := Sanitize(llmOutput(t, string(body)))

	assert.Equal(t, once, twice)
}
