package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClassifyShift(t *testing.T) {
	tests := []struct {
		hour sql.Null[int64]
		want Shift
		en   string
	}{
		{Int(5), ShiftEarlyMorning, "Early morning"},
		{Int(0), ShiftEarlyMorning, "Early morning"},
		{Int(6), ShiftMorning, "Morning"},
		{Int(11), ShiftMorning, "Morning"},
		{Int(12), ShiftAfternoon, "Afternoon"},
		{Int(17), ShiftAfternoon, "Afternoon"},
		{Int(18), ShiftNight, "Night"},
		{Int(23), ShiftNight, "Night"},
		{Int(24), ShiftEarlyMorning, "Early morning"},
		{Int(-1), ShiftEarlyMorning, "Early morning"},
		{sql.Null[int64]{}, ShiftUnknown, "Unknown"},
	}
	for _, tt := range tests {
		got := ClassifyShift(tt.hour)
		if got != tt.want {
			t.Errorf("ClassifyShift(%+v) = %q, want %q", tt.hour, got, tt.want)
		}
		if got.English() != tt.en {
			t.Errorf("English(%q) = %q, want %q", got, got.English(), tt.en)
		}
	}
}

func TestMonthNumber(t *testing.T) {
	tests := map[string]int{"12": 12, "1.0": 1, "Dezembro": 12, "março": 3, "JAN": 1, "december": 12}
	for in, want := range tests {
		got, ok := MonthNumber(in)
		if !ok || got != want {
			t.Errorf("MonthNumber(%q) = %d,%v want %d", in, got, ok, want)
		}
	}
	for _, bad := range []string{"13", "0", "", "abc"} {
		if _, ok := MonthNumber(bad); ok {
			t.Errorf("MonthNumber(%q) should fail", bad)
		}
	}
}

func TestFold(t *testing.T) {
	if Fold("  Faixa   Etária ") != "faixa etaria" {
		t.Fatalf("Fold: %q", Fold("  Faixa   Etária "))
	}
	if !IsNull("NÃO DISPONÍVEL") || !IsNull("NaN") || !IsNull(" ") || IsNull("0") {
		t.Fatalf("IsNull mismatch")
	}
}

func TestViewFilterYearLeavesSourceIntact(t *testing.T) {
	v := NewView([]Record{{Year: Int(2020)}, {Year: Int(2021)}, {}, {Year: Int(2021)}})
	f := v.FilterYear(2021)
	if f.Len() != 2 {
		t.Fatalf("FilterYear: %d", f.Len())
	}
	if v.Len() != 4 {
		t.Fatalf("source view changed: %d", v.Len())
	}
	if none := v.FilterYear(1999); !none.Empty() {
		t.Fatalf("expected empty view")
	}
	if got := v.FilterYearRange(2021, 0).Len(); got != 2 {
		t.Fatalf("open upper bound: %d", got)
	}
}

func TestWithShiftsDoesNotMutate(t *testing.T) {
	v := NewView([]Record{{Hour: Int(8)}})
	w := v.WithShifts()
	if v.At(0).Shift.Valid {
		t.Fatalf("receiver mutated")
	}
	if w.At(0).Shift.V != string(ShiftMorning) {
		t.Fatalf("derived shift: %q", w.At(0).Shift.V)
	}
}

func TestRecordValue(t *testing.T) {
	r := Record{Year: Int(2021), VictimAge: Float(30.5), Sex: Str("Feminino")}
	if s, ok := r.Value(ColYear); !ok || s != "2021" {
		t.Fatalf("year value: %q %v", s, ok)
	}
	if s, ok := r.Value(ColVictimAge); !ok || s != "30.5" {
		t.Fatalf("age value: %q %v", s, ok)
	}
	if _, ok := r.Value(ColNeighborhood); ok {
		t.Fatalf("null column reported valid")
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obitos.csv")
	if err := os.WriteFile(path, []byte("Ano\n2021\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	// unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("Ano\n2022\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-changes:
		abs, _ := filepath.Abs(path)
		if got != abs {
			t.Fatalf("unexpected path %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change event")
	}
	cancel()
	for range changes {
	}
}
