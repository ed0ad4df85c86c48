package dataset

import "database/sql"

// Shift is a part of the day, stored with its Portuguese label.
type Shift string

const (
	ShiftMorning      Shift = "Manhã"
	ShiftAfternoon    Shift = "Tarde"
	ShiftNight        Shift = "Noite"
	ShiftEarlyMorning Shift = "Madrugada"
	ShiftUnknown      Shift = "Desconhecido"
)

var shiftEnglish = map[Shift]string{
	ShiftMorning:      "Morning",
	ShiftAfternoon:    "Afternoon",
	ShiftNight:        "Night",
	ShiftEarlyMorning: "Early morning",
	ShiftUnknown:      "Unknown",
}

// English returns the English label, or the stored label when it is not a known shift.
func (s Shift) English() string {
	if en, ok := shiftEnglish[s]; ok {
		return en
	}
	return string(s)
}

// ClassifyShift maps an hour of day to its shift:
// [6,12) morning, [12,18) afternoon, [18,24) night, anything else early morning.
// Only a null hour is unknown.
func ClassifyShift(hour sql.Null[int64]) Shift {
	if !hour.Valid {
		return ShiftUnknown
	}
	h := hour.V
	switch {
	case h >= 6 && h < 12:
		return ShiftMorning
	case h >= 12 && h < 18:
		return ShiftAfternoon
	case h >= 18 && h < 24:
		return ShiftNight
	}
	return ShiftEarlyMorning
}
