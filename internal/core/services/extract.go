package services

import (
	"encoding/json"
	"regexp"
	"strings"
)

// JSON extraction pipeline. LLMs wrap JSON in prose, code fences, or emit
// several candidate structures; this module scavenges whatever is there.
// The staged fallbacks are deliberate resilience, not cleanup candidates.

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON runs the five-stage extraction pipeline over raw model output,
// stopping at the first stage that yields values. It never returns an empty
// slice: when nothing parses, the raw text is wrapped as {"text": raw}.
//
// Stages: whole-string parse → fenced code block → first balanced {...} span
// → first balanced [...] span → permissive scavenger.
func ExtractJSON(raw string) []any {
	trimmed := strings.TrimSpace(raw)

	// 1. Direct whole-string parse.
	if vals, ok := parseValue(trimmed); ok {
		return vals
	}

	// 2. Fenced code block contents.
	if m := fencedBlockRe.FindStringSubmatch(trimmed); len(m) > 1 {
		if vals, ok := parseValue(strings.TrimSpace(m[1])); ok {
			return vals
		}
	}

	// 3. First balanced object span.
	if span := balancedSpan(trimmed, '{', '}'); span != "" {
		if vals, ok := parseValue(span); ok {
			return vals
		}
	}

	// 4. First balanced array span.
	if span := balancedSpan(trimmed, '[', ']'); span != "" {
		if vals, ok := parseValue(span); ok {
			return vals
		}
	}

	// 5. Scavenger: any embedded JSON literal anywhere in the text.
	if vals := scavengeJSON(trimmed); len(vals) > 0 {
		return vals
	}

	return []any{map[string]any{"text": raw}}
}

// parseValue decodes a candidate string. A top-level array is flattened into
// its elements so callers always receive a list of candidate structures.
func parseValue(s string) ([]any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return t, true
	default:
		return []any{v}, true
	}
}

// balancedSpan returns the first balanced open...closing span, tracking string
// literals and escapes so braces inside strings do not confuse the depth count.
func balancedSpan(s string, open, closing byte) string {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inStr {
			escaped = true
			continue
		}
		if ch == '"' {
			inStr = !inStr
			continue
		}
		if inStr {
			continue
		}
		if ch == open {
			depth++
		} else if ch == closing {
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// scavengeJSON walks the text and tries to decode a JSON value at every
// '{' or '[' it finds. Last-resort stage: slower, but tolerant of leading
// garbage and multiple embedded literals.
func scavengeJSON(s string) []any {
	var out []any
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			out = append(out, v)
			// Skip past the decoded value so nested literals are not re-added.
			i += int(dec.InputOffset()) - 1
		}
	}
	return out
}
