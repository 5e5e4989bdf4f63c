// Package contract extracts the single JSON object the completion service
// is instructed to emit from a possibly noisy response: code fences,
// trailing prose and trailing commas are all expected, not exceptional.
package contract

import (
	"encoding/json"
	"regexp"
	"strings"

	"axinsight/internal/apperr"
)

var (
	// whole response wrapped in a single fenced block, optionally tagged json
	wholeFenceRegex = regexp.MustCompile(`(?is)^\x60\x60\x60(?:json)?\s*(.*?)\s*\x60\x60\x60$`)

	// fenced json blocks anywhere in the text
	fencedBlockRegex = regexp.MustCompile(`(?is)\x60\x60\x60json\s*(.*?)\x60\x60\x60`)

	// trailing comma before a closing brace or bracket, illegal in strict JSON
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

// repairTrailingCommas removes commas immediately preceding a closing brace
// or bracket, the most common strict-JSON violation in model output.
func repairTrailingCommas(s string) string {
	return trailingCommaRegex.ReplaceAllString(s, "$1")
}

// ExtractJSON returns the first substring of text that parses as JSON after
// repair, trying in order: a whole-response fence unwrap, the first-{ to
// last-} slice, every fenced json block, and finally the repaired text
// itself. The boolean reports whether any candidate parsed.
func ExtractJSON(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false
	}

	if m := wholeFenceRegex.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		cand := repairTrailingCommas(strings.TrimSpace(s[start : end+1]))
		if json.Valid([]byte(cand)) {
			return cand, true
		}
	}

	for _, m := range fencedBlockRegex.FindAllStringSubmatch(s, -1) {
		cand := repairTrailingCommas(strings.TrimSpace(m[1]))
		if json.Valid([]byte(cand)) {
			return cand, true
		}
	}

	if cand := repairTrailingCommas(s); json.Valid([]byte(cand)) {
		return cand, true
	}
	return "", false
}

// Parse extracts and decodes a JSON object from text. A failure is a
// contract violation: the caller renders a placeholder state instead of
// crashing the presentation layer.
func Parse(text string) (map[string]any, error) {
	cand, ok := ExtractJSON(text)
	if !ok {
		return nil, apperr.ContractViolation("no parseable JSON object in completion response", nil)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(cand), &out); err != nil {
		return nil, apperr.ContractViolation("completion response candidate failed to decode", err)
	}
	return out, nil
}

// ParseInto extracts a JSON object from text and decodes it into v.
func ParseInto(text string, v any) error {
	cand, ok := ExtractJSON(text)
	if !ok {
		return apperr.ContractViolation("no parseable JSON object in completion response", nil)
	}
	if err := json.Unmarshal([]byte(cand), v); err != nil {
		return apperr.ContractViolation("completion response candidate failed to decode", err)
	}
	return nil
}

// SafeParse converts a stored session value to a map without ever failing.
// Values that are already structured pass through unchanged, strings go
// through extraction, and anything unparseable yields an empty map so
// rendering can degrade to a placeholder state. SafeParse is idempotent
// over already-parsed input.
func SafeParse(value any) map[string]any {
	switch v := value.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return map[string]any{}
		}
		return parsed
	case []byte:
		return SafeParse(string(v))
	case []any:
		// A bare list has no keys to read and every caller consumes a
		// mapping, so it degrades to the placeholder state.
		return map[string]any{}
	default:
		// Structured but not a map (e.g. a decoded struct): round-trip
		// through JSON so callers always see the map shape.
		raw, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		var out map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return map[string]any{}
		}
		return out
	}
}
