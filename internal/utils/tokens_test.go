package utils_test

import (
	"strings"
	"testing"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "óbito", 1},
		{"runes not bytes", strings.Repeat("ç", 400), 100},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	text := strings.Repeat("abcd ", 1000)
	trunc := utils.TruncateToTokenLimit(text, 300)
	if n := utils.CountTokens(trunc); n > 300 {
		t.Fatalf("tokens=%d exceeds limit", n)
	}
	if !strings.HasSuffix(trunc, "…") {
		t.Fatalf("expected ellipsis on truncated text")
	}
	if got := utils.TruncateToTokenLimit("curto", 10); got != "curto" {
		t.Fatalf("short text changed: %q", got)
	}
	if utils.TruncateToTokenLimit("x", 0) != "" {
		t.Fatalf("zero limit should give empty text")
	}
}

func TestTokenBreakdownAndWindow(t *testing.T) {
	b := utils.TokenBreakdown(map[string]string{"context": strings.Repeat("a", 40), "question": ""})
	if b["context"] != 10 || b["question"] != 0 {
		t.Fatalf("breakdown: %v", b)
	}
	prompt := strings.Repeat("a", 400)
	if utils.ExceedsWindow(prompt, 500, 0) {
		t.Fatalf("unknown window must not overflow")
	}
	if !utils.ExceedsWindow(prompt, 500, 550) || utils.ExceedsWindow(prompt, 500, 600) {
		t.Fatalf("window arithmetic wrong")
	}
}
