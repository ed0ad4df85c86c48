package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

func years(ys ...int64) dataset.View {
	recs := make([]dataset.Record, len(ys))
	for i, y := range ys {
		recs[i] = dataset.Record{Year: dataset.Int(y)}
	}
	return dataset.NewView(recs)
}

func column(set func(*dataset.Record, string), values ...string) dataset.View {
	recs := make([]dataset.Record, len(values))
	for i, v := range values {
		if v != "" {
			set(&recs[i], v)
		}
	}
	return dataset.NewView(recs)
}

func TestDeathsInYear(t *testing.T) {
	v := years(2021, 2021, 2020, 2019)
	en := NewContexts(EN, "")
	if got := en.DeathsInYear(v, "how many deaths in 2021"); got != "In 2021, 2 deaths occurred in Franca." {
		t.Fatalf("en count: %q", got)
	}
	pt := NewContexts(PT, "Franca")
	if got := pt.DeathsInYear(v, "Quantos óbitos ocorreram em 2021?"); got != "No ano de 2021, ocorreram 2 óbitos em Franca." {
		t.Fatalf("pt count: %q", got)
	}
	if got := en.DeathsInYear(v, "deaths in 1999?"); got != "In 1999, 0 deaths occurred in Franca." {
		t.Fatalf("absent year should count zero: %q", got)
	}
	if got := pt.DeathsInYear(v, "Quantos óbitos ocorreram?"); got != PhrasebookFor(PT).AskYear {
		t.Fatalf("missing year: %q", got)
	}
}

func TestWeekdayCountsFirstSeenOrder(t *testing.T) {
	v := column(func(r *dataset.Record, s string) { r.Weekday = dataset.Str(s) }, "Mon", "Tue", "Mon", "", "Wed")
	got := NewContexts(EN, "").WeekdayCounts(v, "")
	want := "Number of deaths per weekday:\nMon: 2 deaths\nTue: 1 deaths\nWed: 1 deaths\n"
	if got != want {
		t.Fatalf("weekday counts:\n%q\nwant\n%q", got, want)
	}
}

func TestModeTieGoesToFirstSeen(t *testing.T) {
	v := column(func(r *dataset.Record, s string) { r.AgeBracket = dataset.Str(s) }, "30-34", "18-24", "18-24", "30-34")
	got := NewContexts(PT, "").AgeBracketMode(v, "")
	if got != "A faixa etária mais afetada por acidentes é 30-34, com 2 óbitos." {
		t.Fatalf("age mode: %q", got)
	}
	v = column(func(r *dataset.Record, s string) { r.AgeBracket = dataset.Str(s) }, "18-24", "30-34", "30-34")
	if got := NewContexts(PT, "").AgeBracketMode(v, ""); !strings.Contains(got, "30-34, com 2") {
		t.Fatalf("strict max should win: %q", got)
	}
}

func TestNeighborhoodModeExcludesUnidentified(t *testing.T) {
	set := func(r *dataset.Record, s string) { r.Neighborhood = dataset.Str(s) }
	v := column(set, UnidentifiedNeighborhood, "Centro", UnidentifiedNeighborhood, "BAIRRO NAO IDENTIFICADO")
	c := NewContexts(PT, "")
	if got := c.NeighborhoodMode(v, ""); got != "O bairro com mais óbitos é Centro, com 1 óbitos." {
		t.Fatalf("neighborhood mode: %q", got)
	}
	only := column(set, UnidentifiedNeighborhood, UnidentifiedNeighborhood)
	if got := c.NeighborhoodMode(only, ""); got != "Não há dados disponíveis sobre os bairros identificados." {
		t.Fatalf("no identified neighborhoods: %q", got)
	}
}

func TestBuildersHandleEmptyView(t *testing.T) {
	c := NewContexts(PT, "")
	empty := dataset.NewView(nil)
	builders := map[string]Builder{
		"age":        c.AgeBracketMode,
		"hood":       c.NeighborhoodMode,
		"road":       c.RoadTypeMode,
		"hour":       c.HourMode,
		"sex":        c.SexMode,
		"month":      c.MonthMode,
		"day":        c.DayOfMonthMode,
		"shift":      c.ShiftMode,
		"locomotion": c.LocomotionMode,
		"weekday":    c.WeekdayCounts,
		"accidents":  c.TopAccidentTypes,
		"shares":     c.VictimTypeShares,
		"victimYear": c.VictimTypesInYear,
		"meanAge":    c.MeanAge,
		"meanHood":   c.MeanPerNeighborhood,
		"peaks":      c.MonthlyPeaks,
		"decjan":     c.DecemberJanuary,
		"count":      c.DeathsInYear,
		"default":    c.Fallback,
	}
	for name, b := range builders {
		if got := b(empty, "em 2021"); strings.TrimSpace(got) == "" {
			t.Errorf("%s: empty context", name)
		}
	}
	if got := c.DecemberJanuary(empty, ""); got != PhrasebookFor(PT).DecJanEmpty {
		t.Fatalf("dec/jan empty: %q", got)
	}
	if got := c.MeanAge(empty, ""); got != "Não há dados disponíveis sobre a idade das vítimas." {
		t.Fatalf("mean age empty: %q", got)
	}
}

func TestVictimTypeSharesSumTo100(t *testing.T) {
	set := func(r *dataset.Record, s string) { r.VictimType = dataset.Str(s) }
	v := column(set, "CONDUTOR", "PEDESTRE", "PEDESTRE", "PASSAGEIRO", "", "CONDUTOR", "PEDESTRE")
	counts := Tally(v, dataset.ColVictimType, nil)
	sum := 0.0
	for _, s := range Shares(counts) {
		sum += s
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("shares sum to %v", sum)
	}
	got := NewContexts(PT, "").VictimTypeShares(v, "")
	want := "Proporção de óbitos por tipo de vítima (em %):\nCONDUTOR: 33.33%\nPEDESTRE: 50.00%\nPASSAGEIRO: 16.67%\n"
	if got != want {
		t.Fatalf("shares:\n%q\nwant\n%q", got, want)
	}
}

func TestTopAccidentTypes(t *testing.T) {
	set := func(r *dataset.Record, s string) { r.AccidentType = dataset.Str(s) }
	v := column(set, "A", "B", "C", "D", "E", "F", "F", "E", "F")
	got := NewContexts(EN, "").TopAccidentTypes(v, "")
	want := "The most common accident types are:\nF: 3 occurrences\nE: 2 occurrences\nA: 1 occurrences\nB: 1 occurrences\nC: 1 occurrences\n"
	if got != want {
		t.Fatalf("top accidents:\n%q\nwant\n%q", got, want)
	}
}

func TestMeans(t *testing.T) {
	recs := []dataset.Record{
		{VictimAge: dataset.Float(20), Neighborhood: dataset.Str("A")},
		{VictimAge: dataset.Float(21), Neighborhood: dataset.Str("A")},
		{Neighborhood: dataset.Str("A")},
		{Neighborhood: dataset.Str("B")},
	}
	v := dataset.NewView(recs)
	c := NewContexts(PT, "")
	if got := c.MeanAge(v, ""); got != "A idade média das vítimas de acidentes de trânsito é de 20 anos." {
		t.Fatalf("mean age (20.5 rounds to even): %q", got)
	}
	if got := c.MeanPerNeighborhood(v, ""); got != "A média de óbitos por bairro é de 2 óbitos por bairro." {
		t.Fatalf("mean per neighborhood: %q", got)
	}
}

func rec(year int64, month string) dataset.Record {
	return dataset.Record{Year: dataset.Int(year), Month: dataset.Str(month)}
}

func TestDecemberJanuary(t *testing.T) {
	v := dataset.NewView([]dataset.Record{
		rec(2021, "12"), rec(2020, "12"), rec(2020, "12"), rec(2021, "Janeiro"), rec(2021, "5"),
	})
	got := NewContexts(PT, "").DecemberJanuary(v, "")
	if !strings.HasPrefix(got, "Comparativo de óbitos entre dezembro e janeiro (2019-2023):\n"+
		"Ano: 2020 - Dezembro: 2 óbitos, Janeiro: 0 óbitos - Diferença: -2 óbitos\n"+
		"Ano: 2021 - Dezembro: 1 óbitos, Janeiro: 1 óbitos - Diferença: 0 óbitos\n") {
		t.Fatalf("dec/jan lines:\n%s", got)
	}
	if !strings.HasSuffix(got, "\nResumo: 2020: -2 óbitos, 2021: 0 óbitos") {
		t.Fatalf("dec/jan summary:\n%s", got)
	}
	none := dataset.NewView([]dataset.Record{rec(2021, "5")})
	if got := NewContexts(EN, "").DecemberJanuary(none, ""); !strings.HasPrefix(got, "There is not enough data") {
		t.Fatalf("dec/jan without rows: %q", got)
	}
}

func TestMonthlyPeaks(t *testing.T) {
	v := dataset.NewView([]dataset.Record{
		rec(2020, "3"), rec(2021, "Março"), rec(2021, "3"), rec(2020, "5"), rec(2019, "5"),
	})
	got := NewContexts(PT, "").MonthlyPeaks(v, "")
	want := "Meses com os maiores picos de óbitos por ano:\nMarço: 2021 - 2 óbitos\nMaio: 2019 - 1 óbitos\n"
	if got != want {
		t.Fatalf("peaks:\n%q\nwant\n%q", got, want)
	}
}

func TestShiftModeTranslatesLabels(t *testing.T) {
	v := dataset.NewView([]dataset.Record{
		{Hour: dataset.Int(3)}, {Hour: dataset.Int(4)}, {Hour: dataset.Int(14)},
	}).WithShifts()
	if got := NewContexts(EN, "").ShiftMode(v, ""); got != "The part of the day with the most deaths is Early morning, with 2 deaths." {
		t.Fatalf("en shift: %q", got)
	}
	if got := NewContexts(PT, "").ShiftMode(v, ""); got != "O período do dia com mais óbitos é Madrugada, com 2 óbitos." {
		t.Fatalf("pt shift: %q", got)
	}
}

func TestVictimTypesInYear(t *testing.T) {
	v := dataset.NewView([]dataset.Record{
		{Year: dataset.Int(2022), VictimType: dataset.Str("CONDUTOR")},
		{Year: dataset.Int(2022), VictimType: dataset.Str("PEDESTRE")},
		{Year: dataset.Int(2022), VictimType: dataset.Str("CONDUTOR")},
		{Year: dataset.Int(2021), VictimType: dataset.Str("PASSAGEIRO")},
	})
	got := NewContexts(PT, "").VictimTypesInYear(v, "Qual a distribuição de óbitos por tipo de vítima em 2022?")
	want := "Distribuição de óbitos por tipo de vítima em 2022:\nCONDUTOR: 2 óbitos\nPEDESTRE: 1 óbitos\n"
	if got != want {
		t.Fatalf("victim types in year:\n%q\nwant\n%q", got, want)
	}
}

func TestBuildersDoNotMutateView(t *testing.T) {
	v := dataset.NewView([]dataset.Record{rec(2021, "12"), rec(2020, "1")})
	before := v.At(0)
	c := NewContexts(PT, "")
	c.DecemberJanuary(v, "")
	c.DeathsInYear(v, "2021")
	c.MonthlyPeaks(v, "")
	if v.Len() != 2 || v.At(0) != before {
		t.Fatalf("view changed")
	}
}

func TestYearFromText(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Quantos óbitos ocorreram em 2021?", 2021, true},
		{"between 2019 and 2020", 2019, true},
		{"code 12345", 0, false},
		{"no year", 0, false},
	}
	for _, tt := range tests {
		got, ok := YearFromText(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("YearFromText(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	got := PhrasebookFor(PT).BuildPrompt("ctx", "Pergunta?")
	want := "ctx\n\nCom base nas informações acima, responda à seguinte pergunta:\nPergunta?\nResposta:"
	if got != want {
		t.Fatalf("prompt: %q", got)
	}
	if ParseLang("EN") != EN || ParseLang("xx") != PT {
		t.Fatalf("ParseLang")
	}
}
