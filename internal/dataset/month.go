package dataset

var monthNames = map[string]int{
	"janeiro": 1, "fevereiro": 2, "marco": 3, "abril": 4, "maio": 5, "junho": 6,
	"julho": 7, "agosto": 8, "setembro": 9, "outubro": 10, "novembro": 11, "dezembro": 12,
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "fev": 2, "feb": 2, "mar": 3, "abr": 4, "apr": 4, "mai": 5, "jun": 6,
	"jul": 7, "ago": 8, "aug": 8, "set": 9, "sep": 9, "out": 10, "oct": 10, "nov": 11, "dez": 12, "dec": 12,
}

// MonthNumber resolves a month label ("12", "12.0", "Dezembro", "dez") to 1..12.
func MonthNumber(label string) (int, bool) {
	key := Fold(label)
	if n, ok := monthNames[key]; ok {
		return n, true
	}
	if n, ok := parseWhole(key); ok && n >= 1 && n <= 12 {
		return int(n), true
	}
	return 0, false
}

// MonthOf returns the month number of r, if known.
func MonthOf(r Record) (int, bool) {
	if !r.Month.Valid {
		return 0, false
	}
	return MonthNumber(r.Month.V)
}
