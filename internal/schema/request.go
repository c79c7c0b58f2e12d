// Package schema holds the pure shape checks applied to inbound requests and
// to the JSON the LLM returns. Nothing here does I/O beyond reading a body.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxTranscriptLength is the longest transcript accepted, in characters.
const MaxTranscriptLength = 100_000

// RequestError reports a malformed create-note request. It maps to HTTP 400.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// IsRequestError reports whether err is or wraps a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

func invalid(format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

// ValidateRequest checks a decoded request payload and returns the trimmed
// transcript.
func ValidateRequest(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "", invalid("Request body is required")
	}

	raw, ok := payload["transcript"]
	if !ok || raw == nil {
		return "", invalid("Field 'transcript' is required")
	}

	transcript, ok := raw.(string)
	if !ok {
		return "", invalid("Field 'transcript' must be a string")
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", invalid("Field 'transcript' cannot be empty")
	}
	if utf8.RuneCountInString(transcript) > MaxTranscriptLength {
		return "", invalid("Transcript exceeds maximum length of 100,000 characters")
	}

	return transcript, nil
}

// DecodePayload reads a JSON object request body. Anything that is not a
// JSON object is a *RequestError.
func DecodePayload(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, invalid("Request body is required")
	}

	var payload map[string]any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("Request body is required")
		}
		return nil, invalid("Request body must be a JSON object")
	}
	return payload, nil
}
