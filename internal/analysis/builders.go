package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// UnidentifiedNeighborhood is the placeholder the source uses for unknown neighborhoods.
const UnidentifiedNeighborhood = "Bairro não identificado"

// Builder renders one aggregate of a view as text. question is the text that was asked;
// year-dependent builders read the year from it.
type Builder func(v dataset.View, question string) string

// Contexts renders the context paragraphs in one language. Builders never modify the
// view they receive and never fail; missing data yields a descriptive sentence.
type Contexts struct {
	pb   Phrasebook
	city string
}

// NewContexts returns builders for lang. An empty city defaults to Franca.
func NewContexts(lang Lang, city string) *Contexts {
	if strings.TrimSpace(city) == "" {
		city = "Franca"
	}
	return &Contexts{pb: PhrasebookFor(lang), city: city}
}

// Phrasebook returns the templates in use.
func (c *Contexts) Phrasebook() Phrasebook { return c.pb }

// DeathsInYear counts the records of the year named in the question.
func (c *Contexts) DeathsInYear(v dataset.View, question string) string {
	year, ok := YearFromText(question)
	if !ok {
		return c.pb.AskYear
	}
	return fmt.Sprintf(c.pb.YearCount, year, v.FilterYear(year).Len(), c.city)
}

func (c *Contexts) AgeBracketMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColAgeBracket, c.pb.AgeMode)
}

// NeighborhoodMode ignores the unidentified-neighborhood placeholder.
func (c *Contexts) NeighborhoodMode(v dataset.View, _ string) string {
	m, ok := Mode(Tally(v, dataset.ColNeighborhood, isUnidentified))
	if !ok {
		return c.pb.NoNeighborhood
	}
	return fmt.Sprintf(c.pb.NeighborhoodMode, m.Value, m.Count)
}

func (c *Contexts) RoadTypeMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColRoadType, c.pb.RoadMode)
}

func (c *Contexts) HourMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColHour, c.pb.HourMode)
}

func (c *Contexts) SexMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColSex, c.pb.SexMode)
}

func (c *Contexts) MonthMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColMonth, c.pb.MonthMode)
}

func (c *Contexts) DayOfMonthMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColDayOfMonth, c.pb.DayMode)
}

// ShiftMode relies on the shift column derived at load time.
func (c *Contexts) ShiftMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColShift, c.pb.ShiftMode)
}

func (c *Contexts) LocomotionMode(v dataset.View, _ string) string {
	return c.mode(v, dataset.ColLocomotion, c.pb.LocomotionMode)
}

// WeekdayCounts lists deaths per weekday in first-seen order.
func (c *Contexts) WeekdayCounts(v dataset.View, _ string) string {
	counts := Tally(v, dataset.ColWeekday, nil)
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColWeekday)
	}
	return c.lines(c.pb.WeekdayHeader, c.pb.DeathsLine, counts)
}

// TopAccidentTypes lists the five most common accident types.
func (c *Contexts) TopAccidentTypes(v dataset.View, _ string) string {
	counts := Top(Tally(v, dataset.ColAccidentType, nil), 5)
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColAccidentType)
	}
	return c.lines(c.pb.AccidentHeader, c.pb.OccurrencesLine, counts)
}

// VictimTypeShares lists each victim type's share of deaths. Nulls are excluded.
func (c *Contexts) VictimTypeShares(v dataset.View, _ string) string {
	counts := Tally(v, dataset.ColVictimType, nil)
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColVictimType)
	}
	var b strings.Builder
	b.WriteString(c.pb.VictimShare)
	for i, share := range Shares(counts) {
		fmt.Fprintf(&b, c.pb.ShareLine, counts[i].Value, share)
	}
	return b.String()
}

// VictimTypesInYear lists deaths per victim type for the year named in the question.
func (c *Contexts) VictimTypesInYear(v dataset.View, question string) string {
	year, ok := YearFromText(question)
	if !ok {
		return c.pb.AskYear
	}
	counts := Tally(v.FilterYear(year), dataset.ColVictimType, nil)
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColVictimType)
	}
	return c.lines(fmt.Sprintf(c.pb.VictimYear, year), c.pb.DeathsLine, counts)
}

// MeanAge averages the victim age over records that have one.
func (c *Contexts) MeanAge(v dataset.View, _ string) string {
	var sum float64
	n := 0
	v.Each(func(r dataset.Record) {
		if r.VictimAge.Valid {
			sum += r.VictimAge.V
			n++
		}
	})
	if n == 0 {
		return c.pb.NoDataAbout(dataset.ColVictimAge)
	}
	return fmt.Sprintf(c.pb.AgeMean, roundHalfEven(sum/float64(n)))
}

// MeanPerNeighborhood averages the death count over every named neighborhood.
func (c *Contexts) MeanPerNeighborhood(v dataset.View, _ string) string {
	counts := Tally(v, dataset.ColNeighborhood, nil)
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColNeighborhood)
	}
	total := 0
	for _, cc := range counts {
		total += cc.Count
	}
	return fmt.Sprintf(c.pb.NeighborhoodMean, roundHalfEven(float64(total)/float64(len(counts))))
}

// MonthlyPeaks reports, for each month, the year with the most deaths in that month.
// Ties go to the earliest year.
func (c *Contexts) MonthlyPeaks(v dataset.View, _ string) string {
	type key struct{ month, year int }
	counts := map[key]int{}
	v.Each(func(r dataset.Record) {
		m, ok := dataset.MonthOf(r)
		if !ok || !r.Year.Valid {
			return
		}
		counts[key{m, int(r.Year.V)}]++
	})
	if len(counts) == 0 {
		return c.pb.NoDataAbout(dataset.ColMonth)
	}
	years := v.Years()
	var b strings.Builder
	b.WriteString(c.pb.PeakHeader)
	for m := 1; m <= 12; m++ {
		bestYear, best := 0, 0
		for _, y := range years {
			if n := counts[key{m, y}]; n > best {
				bestYear, best = y, n
			}
		}
		if best == 0 {
			continue
		}
		fmt.Fprintf(&b, c.pb.PeakLine, c.pb.MonthName(m), bestYear, best)
	}
	return b.String()
}

// DecemberJanuary compares December and January deaths per year, ascending. A month
// with no records in a year counts as zero.
func (c *Contexts) DecemberJanuary(v dataset.View, _ string) string {
	dec := map[int]int{}
	jan := map[int]int{}
	seen := map[int]bool{}
	v.Each(func(r dataset.Record) {
		m, ok := dataset.MonthOf(r)
		if !ok || !r.Year.Valid || (m != 12 && m != 1) {
			return
		}
		y := int(r.Year.V)
		seen[y] = true
		if m == 12 {
			dec[y]++
		} else {
			jan[y]++
		}
	})
	if len(seen) == 0 {
		return c.pb.DecJanEmpty
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)

	var b strings.Builder
	b.WriteString(c.pb.DecJanHeader)
	summary := make([]string, 0, len(years))
	for _, y := range years {
		delta := jan[y] - dec[y]
		fmt.Fprintf(&b, c.pb.DecJanLine, y, dec[y], jan[y], delta)
		summary = append(summary, fmt.Sprintf(c.pb.DecJanItem, y, delta))
	}
	b.WriteString(c.pb.DecJanInsight)
	fmt.Fprintf(&b, c.pb.DecJanSummary, strings.Join(summary, ", "))
	return b.String()
}

// Fallback is the context for questions no builder answers.
func (c *Contexts) Fallback(dataset.View, string) string {
	return c.pb.Default
}

func (c *Contexts) mode(v dataset.View, col dataset.Column, tmpl string) string {
	m, ok := Mode(Tally(v, col, nil))
	if !ok {
		return c.pb.NoDataAbout(col)
	}
	label := m.Value
	if col == dataset.ColShift && c.pb.Lang == EN {
		label = dataset.Shift(label).English()
	}
	return fmt.Sprintf(tmpl, label, m.Count)
}

func (c *Contexts) lines(header, line string, counts []CategoryCount) string {
	var b strings.Builder
	b.WriteString(header)
	for _, cc := range counts {
		fmt.Fprintf(&b, line, cc.Value, cc.Count)
	}
	return b.String()
}

func isUnidentified(v string) bool {
	return dataset.Fold(v) == dataset.Fold(UnidentifiedNeighborhood)
}
