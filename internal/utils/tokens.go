package utils

// Token estimates follow the common 1 token ~= 4 characters heuristic. Portuguese
// text with accents is counted in runes, not bytes.

// CountTokens estimates the number of tokens in the given text.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TruncateToTokenLimit cuts text to roughly limit tokens, appending "…" when cut.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit >= len(runes) {
		return text
	}
	return string(runes[:charLimit-1]) + "…"
}

// TokenBreakdown returns a simple breakdown map of labeled sections to token counts.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = CountTokens(v)
	}
	return out
}

// ExceedsWindow reports whether a prompt plus the requested output would overflow
// a model context window. A window of zero means unknown and never overflows.
func ExceedsWindow(prompt string, maxOutput, window int) bool {
	if window <= 0 {
		return false
	}
	return CountTokens(prompt)+maxOutput > window
}
