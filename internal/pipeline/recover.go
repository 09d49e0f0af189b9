package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// recoverJSONArray parses a free-form model response expected to contain a
// JSON array, tolerating markdown fences and truncation under the output
// token ceiling. Repair is bounded: force-close the array after the last
// complete object, then once more after dropping the trailing partial
// element. Partial recovery (N-1 of N records) is preferred over total
// failure; exhaustion surfaces ErrMalformedOutput.
func recoverJSONArray(text string, v any) error {
	s := strings.TrimSpace(stripFence(text))
	if i := strings.Index(s, "["); i > 0 {
		s = s[i:]
	}
	if !strings.HasPrefix(s, "[") {
		return eris.Wrap(ErrMalformedOutput, "recover: no JSON array in response")
	}

	candidate := s
	if !strings.HasSuffix(candidate, "]") {
		// Truncated mid-stream: keep everything up to the last complete
		// object boundary.
		i := strings.LastIndex(candidate, "}")
		if i < 0 {
			// Not a single complete object to salvage.
			return eris.Wrap(ErrMalformedOutput, "recover: truncated array has no complete element")
		}
		candidate = candidate[:i+1] + "]"
	}

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	// Second attempt: drop the trailing element (its closing brace may
	// have belonged to a nested object) and force-close again.
	trimmed := strings.TrimSuffix(candidate, "]")
	if i := strings.LastIndex(trimmed, "},"); i >= 0 {
		candidate = trimmed[:i+1] + "]"
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	return eris.Wrap(ErrMalformedOutput, "recover: array repair attempts exhausted")
}

// recoverJSONObject extracts and parses a single JSON object from a model
// response that may carry fences or surrounding prose.
func recoverJSONObject(text string, v any) error {
	s := stripFence(text)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}

	if err := json.Unmarshal([]byte(s), v); err != nil {
		return eris.Wrap(ErrMalformedOutput, "recover: object parse failed")
	}
	return nil
}

// stripFence removes a markdown code fence if present. The first fenced
// block wins; text outside it is discarded.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	i := strings.Index(text, "```")
	if i < 0 {
		return text
	}
	rest := text[i+3:]
	rest = strings.TrimPrefix(rest, "json")
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
