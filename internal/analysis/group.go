package analysis

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// CategoryCount is one group of a categorical column.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Tally counts the non-null values of col in first-seen order. Values for which skip
// returns true are left out.
func Tally(v dataset.View, col dataset.Column, skip func(string) bool) []CategoryCount {
	index := map[string]int{}
	var out []CategoryCount
	v.Each(func(r dataset.Record) {
		val, ok := r.Value(col)
		if !ok || (skip != nil && skip(val)) {
			return
		}
		i, seen := index[val]
		if !seen {
			i = len(out)
			index[val] = i
			out = append(out, CategoryCount{Value: val})
		}
		out[i].Count++
	})
	return out
}

// Mode returns the largest group. Ties resolve to the group seen first.
func Mode(counts []CategoryCount) (CategoryCount, bool) {
	if len(counts) == 0 {
		return CategoryCount{}, false
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	return best, true
}

// Top returns the n largest groups, highest first, ties kept in first-seen order.
func Top(counts []CategoryCount, n int) []CategoryCount {
	out := make([]CategoryCount, len(counts))
	copy(out, counts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Shares returns each group's percentage of the total.
func Shares(counts []CategoryCount) []float64 {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c.Count) * 100 / float64(total)
	}
	return out
}

// roundHalfEven rounds to the nearest integer with ties to even.
func roundHalfEven(x float64) int {
	return int(math.RoundToEven(x))
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// YearFromText returns the first standalone four-digit number in s.
func YearFromText(s string) (int, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}
