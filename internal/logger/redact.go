package logger

import (
	"regexp"
	"unicode/utf8"
)

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[a-zA-Z0-9_\-]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._\-]+`),
	regexp.MustCompile(`"(?:api_key|apiKey|API_KEY)":\s*"[^"]+"`),
	regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
	regexp.MustCompile(`gh[pu]_[a-zA-Z0-9]{36}`),
}

// Redact replaces API keys and bearer tokens in s with [REDACTED].
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

// Snip returns a prefix of s capped at maxRunes runes, marking the cut with an ellipsis.
func Snip(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	n := 0
	idx := 0
	for idx < len(s) {
		if n >= maxRunes {
			break
		}
		_, size := utf8.DecodeRuneInString(s[idx:])
		idx += size
		n++
	}
	if idx >= len(s) {
		return s
	}
	return s[:idx] + "…"
}

// Safe is Redact followed by Snip, the form used for logging backend payloads.
func Safe(s string, maxRunes int) string {
	return Snip(Redact(s), maxRunes)
}
