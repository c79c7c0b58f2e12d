package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
		wantMsg string
	}{
		{name: "nil payload", payload: nil, wantMsg: "Request body is required"},
		{name: "empty payload", payload: map[string]any{}, wantMsg: "Request body is required"},
		{name: "missing transcript", payload: map[string]any{"text": "hi"}, wantMsg: "is required"},
		{name: "null transcript", payload: map[string]any{"transcript": nil}, wantMsg: "is required"},
		{name: "number transcript", payload: map[string]any{"transcript": 42.0}, wantMsg: "must be a string"},
		{name: "list transcript", payload: map[string]any{"transcript": []any{"a"}}, wantMsg: "must be a string"},
		{name: "blank transcript", payload: map[string]any{"transcript": " \n\t "}, wantMsg: "cannot be empty"},
		{
			name:    "too long",
			payload: map[string]any{"transcript": strings.Repeat("a", MaxTranscriptLength+1)},
			wantMsg: "maximum length",
		},
		{
			name:    "exactly at limit",
			payload: map[string]any{"transcript": strings.Repeat("a", MaxTranscriptLength)},
			want:    strings.Repeat("a", MaxTranscriptLength),
		},
		{
			name:    "multibyte characters count once",
			payload: map[string]any{"transcript": strings.Repeat("é", MaxTranscriptLength)},
			want:    strings.Repeat("é", MaxTranscriptLength),
		},
		{name: "trims", payload: map[string]any{"transcript": "  hello team  "}, want: "hello team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRequest(tt.payload)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, IsRequestError(err))
				assert.Contains(t, err.Error(), tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload(strings.NewReader(`{"transcript":" standup notes "}`))
	require.NoError(t, err)
	got, err := ValidateRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, "standup notes", got)

	for _, body := range []string{"", "[1,2]", "not json", `"text"`} {
		_, err := DecodePayload(strings.NewReader(body))
		assert.True(t, IsRequestError(err), "body %q", body)
	}

	payload, err = DecodePayload(strings.NewReader("null"))
	require.NoError(t, err)
	_, err = ValidateRequest(payload)
	assert.True(t, IsRequestError(err))
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidateLLMOutput(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantIndex int
	}{
		{name: "not an object", body: `["summary"]`, wantField: "(root)", wantIndex: -1},
		{name: "missing summary", body: `{"action_items":[],"decisions":[],"keywords":[]}`, wantField: "summary", wantIndex: -1},
		{name: "missing action_items", body: `{"summary":"s","decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: -1},
		{name: "missing decisions", body: `{"summary":"s","action_items":[],"keywords":[]}`, wantField: "decisions", wantIndex: -1},
		{name: "missing keywords", body: `{"summary":"s","action_items":[],"decisions":[]}`, wantField: "keywords", wantIndex: -1},
		{name: "summary not string", body: `{"summary":1,"action_items":[],"decisions":[],"keywords":[]}`, wantField: "summary", wantIndex: -1},
		{name: "summary blank", body: `{"summary":"  ","action_items":[],"decisions":[],"keywords":[]}`, wantField: "summary", wantIndex: -1},
		{name: "action_items not list", body: `{"summary":"s","action_items":{},"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: -1},
		{name: "action item not object", body: `{"summary":"s","action_items":[{"text":"a"},"b"],"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: 1},
		{name: "action item missing text", body: `{"summary":"s","action_items":[{"owner":"x"}],"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: 0},
		{name: "action item text not string", body: `{"summary":"s","action_items":[{"text":"a"},{"text":"b"},{"text":3}],"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: 2},
		{name: "action item text blank", body: `{"summary":"s","action_items":[{"text":"a"},{"text":"   "}],"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: 1},
		{name: "action item owner not string", body: `{"summary":"s","action_items":[{"text":"a","owner":7}],"decisions":[],"keywords":[]}`, wantField: "action_items", wantIndex: 0},
		{name: "decisions not list", body: `{"summary":"s","action_items":[],"decisions":"x","keywords":[]}`, wantField: "decisions", wantIndex: -1},
		{name: "decision not string", body: `{"summary":"s","action_items":[],"decisions":["a",false],"keywords":[]}`, wantField: "decisions", wantIndex: 1},
		{name: "keywords not list", body: `{"summary":"s","action_items":[],"decisions":[],"keywords":null}`, wantField: "keywords", wantIndex: -1},
		{name: "keyword not string", body: `{"summary":"s","action_items":[],"decisions":[],"keywords":[{}]}`, wantField: "keywords", wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLLMOutput(decode(t, tt.body))
			require.Error(t, err)

			var v *Violation
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.wantField, v.Field)
			assert.Equal(t, tt.wantIndex, v.Index)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidateLLMOutputAccepts(t *testing.T) {
	body := `{
		"summary": "Team agreed to ship v2 by Friday.",
		"action_items": [{"text": "Write changelog", "owner": "Alice", "due_date": null}],
		"decisions": ["Ship v2 by Friday"],
		"keywords": ["v2", "release"],
		"confidence": 0.9
	}`
	data := decode(t, body)
	before, _ := json.Marshal(data)

	require.NoError(t, ValidateLLMOutput(data))

	after, _ := json.Marshal(data)
	assert.JSONEq(t, string(before), string(after), "input must not be mutated")
}

func TestViolationMessageIncludesIndex(t *testing.T) {
	v := &Violation{Field: "keywords", Index: 3, Reason: "must be a string"}
	assert.Equal(t, "LLM response field 'keywords' at index 3 must be a string", v.Error())
}
