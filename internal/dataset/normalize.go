package dataset

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nullMarkers are cell values treated as missing, compared after Fold.
var nullMarkers = map[string]bool{
	"":               true,
	"nan":            true,
	"na":             true,
	"n/a":            true,
	"<nil>":          true,
	"nao disponivel": true,
	"nao informado":  true,
}

// Fold lowercases s, strips diacritics and collapses inner whitespace so
// "Faixa Etária" and "faixa  etaria" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// IsNull reports whether a raw cell should load as null.
func IsNull(cell string) bool {
	return nullMarkers[Fold(cell)]
}

func parseText(cell string) (string, bool) {
	if IsNull(cell) {
		return "", false
	}
	return strings.TrimSpace(cell), true
}

// parseWhole accepts "14", "14.0", "14,0" and "14:30" (the hour part).
func parseWhole(cell string) (int64, bool) {
	if IsNull(cell) {
		return 0, false
	}
	s := strings.TrimSpace(cell)
	if i := strings.IndexByte(s, ':'); i > 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", ".")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f {
		return 0, false
	}
	return int64(f), true
}

func parseReal(cell string) (float64, bool) {
	if IsNull(cell) {
		return 0, false
	}
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f {
		return 0, false
	}
	return f, true
}
