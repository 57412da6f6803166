package llm

import "strings"

// The inference service wraps its JSON in prose often enough that the span
// has to be cut out before parsing.

// ExtractJSONObject returns the first brace-delimited span in s, spanning
// from the first '{' to the last '}'.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// ExtractJSONArray returns the first bracket-delimited span in s, spanning
// from the first '[' to the last ']'.
func ExtractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
