package assistant

import "strings"

// Category is the bucket free text is classified into.
type Category string

const (
	CategoryYear       Category = "year"
	CategoryAgeBracket Category = "age-bracket"
	CategoryWeekday    Category = "weekday"
	CategoryGeneral    Category = "general"
)

// rules are checked in order; the first rule with a matching keyword wins.
var rules = []struct {
	category Category
	keywords []string
}{
	{CategoryYear, []string{"ano", "year"}},
	{CategoryAgeBracket, []string{"faixa etária", "faixa etaria", "age bracket"}},
	{CategoryWeekday, []string{"dia da semana", "weekday"}},
}

// Classify maps free text to a category by case-insensitive keyword containment.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return CategoryGeneral
}
