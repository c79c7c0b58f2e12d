package llm

import (
	"strings"
	"unicode/utf8"
)

const systemPrompt = `You are a concise meeting assistant.
Given a meeting transcript, return valid JSON with:
  summary: 2-3 sentence overview
  action_items: list of {text, owner (optional), due_date (optional)}
  decisions: list of decisions made
  keywords: list of 5 keywords
Respond ONLY with JSON.`

// healthTranscript is the canned input used by Check.
const healthTranscript = "Test meeting: discussed project timeline."

const snippetLength = 200

func userPrompt(transcript string) string {
	return "Transcript:\n" + transcript
}

// stripFences removes an optional ```json or ``` opening fence and a closing
// ``` fence around the generated text.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// snippet truncates text to at most snippetLength characters.
func snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetLength])
}
