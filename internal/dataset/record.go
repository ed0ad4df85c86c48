package dataset

import (
	"database/sql"
	"strconv"
)

// Record is one fatality event. Every attribute is nullable; sentinel markers such as
// "NAO DISPONIVEL" are already folded into nulls by the loader.
type Record struct {
	Year         sql.Null[int64]
	AgeBracket   sql.Null[string]
	Neighborhood sql.Null[string]
	RoadType     sql.Null[string]
	Weekday      sql.Null[string]
	Hour         sql.Null[int64]
	Sex          sql.Null[string]
	Month        sql.Null[string] // as found in the source: "12" or "Dezembro"
	DayOfMonth   sql.Null[int64]
	Shift        sql.Null[string]
	Locomotion   sql.Null[string]
	AccidentType sql.Null[string]
	VictimType   sql.Null[string]
	VictimAge    sql.Null[float64]
}

// Column identifies a Record attribute.
type Column int

const (
	ColYear Column = iota
	ColAgeBracket
	ColNeighborhood
	ColRoadType
	ColWeekday
	ColHour
	ColSex
	ColMonth
	ColDayOfMonth
	ColShift
	ColLocomotion
	ColAccidentType
	ColVictimType
	ColVictimAge
)

// Columns lists every column in canonical header order.
var Columns = []Column{
	ColYear, ColAgeBracket, ColNeighborhood, ColRoadType, ColWeekday, ColHour, ColSex,
	ColMonth, ColDayOfMonth, ColShift, ColLocomotion, ColAccidentType, ColVictimType, ColVictimAge,
}

var headers = map[Column]string{
	ColYear:         "Ano",
	ColAgeBracket:   "Faixa etaria",
	ColNeighborhood: "Bairro",
	ColRoadType:     "Tipo de Via",
	ColWeekday:      "Dia da Semana",
	ColHour:         "Hora do Sinistro",
	ColSex:          "Sexo",
	ColMonth:        "Mes do Sinistro",
	ColDayOfMonth:   "Dia do Sinistro",
	ColShift:        "Turno",
	ColLocomotion:   "Meio de locomocao da vitima",
	ColAccidentType: "Tipo de Sinistro",
	ColVictimType:   "Tipo de vitima",
	ColVictimAge:    "Idade da vitima",
}

// Header returns the canonical source header of the column.
func (c Column) Header() string { return headers[c] }

func (c Column) String() string { return headers[c] }

// Value renders the column of r as a category key. ok is false for nulls.
func (r Record) Value(c Column) (string, bool) {
	switch c {
	case ColYear:
		return intValue(r.Year)
	case ColAgeBracket:
		return strValue(r.AgeBracket)
	case ColNeighborhood:
		return strValue(r.Neighborhood)
	case ColRoadType:
		return strValue(r.RoadType)
	case ColWeekday:
		return strValue(r.Weekday)
	case ColHour:
		return intValue(r.Hour)
	case ColSex:
		return strValue(r.Sex)
	case ColMonth:
		return strValue(r.Month)
	case ColDayOfMonth:
		return intValue(r.DayOfMonth)
	case ColShift:
		return strValue(r.Shift)
	case ColLocomotion:
		return strValue(r.Locomotion)
	case ColAccidentType:
		return strValue(r.AccidentType)
	case ColVictimType:
		return strValue(r.VictimType)
	case ColVictimAge:
		if !r.VictimAge.Valid {
			return "", false
		}
		return strconv.FormatFloat(r.VictimAge.V, 'f', -1, 64), true
	}
	return "", false
}

func strValue(v sql.Null[string]) (string, bool) {
	if !v.Valid {
		return "", false
	}
	return v.V, true
}

func intValue(v sql.Null[int64]) (string, bool) {
	if !v.Valid {
		return "", false
	}
	return strconv.FormatInt(v.V, 10), true
}

// Str builds a valid nullable string.
func Str(s string) sql.Null[string] { return sql.Null[string]{V: s, Valid: true} }

// Int builds a valid nullable integer.
func Int(n int64) sql.Null[int64] { return sql.Null[int64]{V: n, Valid: true} }

// Float builds a valid nullable float.
func Float(f float64) sql.Null[float64] { return sql.Null[float64]{V: f, Valid: true} }
