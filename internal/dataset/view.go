package dataset

import "sort"

// View is a read-only, ordered slice of records. Filtering returns a new View and never
// touches the records of the receiver.
type View struct {
	records []Record
}

// NewView copies records into a new View.
func NewView(records []Record) View {
	cp := make([]Record, len(records))
	copy(cp, records)
	return View{records: cp}
}

// Len returns the number of records.
func (v View) Len() int { return len(v.records) }

// Empty reports whether the view has no records.
func (v View) Empty() bool { return len(v.records) == 0 }

// At returns a copy of the i-th record.
func (v View) At(i int) Record { return v.records[i] }

// Each calls fn for every record in row order.
func (v View) Each(fn func(Record)) {
	for _, r := range v.records {
		fn(r)
	}
}

// Filter returns the records for which keep returns true.
func (v View) Filter(keep func(Record) bool) View {
	out := make([]Record, 0, len(v.records))
	for _, r := range v.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return View{records: out}
}

// FilterYear keeps the records of a single year.
func (v View) FilterYear(year int) View {
	return v.Filter(func(r Record) bool {
		return r.Year.Valid && r.Year.V == int64(year)
	})
}

// FilterYearRange keeps records with from <= year <= to. A zero bound is open.
func (v View) FilterYearRange(from, to int) View {
	if from == 0 && to == 0 {
		return v
	}
	return v.Filter(func(r Record) bool {
		if !r.Year.Valid {
			return false
		}
		y := int(r.Year.V)
		if from != 0 && y < from {
			return false
		}
		if to != 0 && y > to {
			return false
		}
		return true
	})
}

// Years returns the distinct non-null years in ascending order.
func (v View) Years() []int {
	seen := map[int]bool{}
	var out []int
	for _, r := range v.records {
		if !r.Year.Valid {
			continue
		}
		y := int(r.Year.V)
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// WithShifts returns a view whose Shift column is derived from Hour.
func (v View) WithShifts() View {
	out := make([]Record, len(v.records))
	copy(out, v.records)
	DeriveShifts(out)
	return View{records: out}
}

// DeriveShifts assigns the Shift column of every record from its Hour, in place.
// The loader calls it once, before the records are frozen into a View.
func DeriveShifts(records []Record) {
	for i := range records {
		records[i].Shift = Str(string(ClassifyShift(records[i].Hour)))
	}
}
