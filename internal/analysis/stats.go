package analysis

import "github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"

// Metric is one headline number. Delta is set when a previous year is available.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Delta *int   `json:"delta,omitempty"`
}

// Headline groups the dashboard metrics for a year, or for all years when Year is 0.
type Headline struct {
	Year    int      `json:"year,omitempty"`
	Metrics []Metric `json:"metrics"`
}

var metricLabels = map[Lang]map[string]string{
	PT: {
		"total":              "Total de Óbitos",
		"drivers_passengers": "Óbitos por Motoristas e Condutores",
		"pedestrians":        "Óbitos de Pedestres",
	},
	EN: {
		"total":              "Total deaths",
		"drivers_passengers": "Driver and passenger deaths",
		"pedestrians":        "Pedestrian deaths",
	},
}

// Headlines computes the headline metrics. When year is set and the previous year has
// records in all, each metric carries its change against that year.
func Headlines(all dataset.View, year int, lang Lang) Headline {
	current := all
	if year != 0 {
		current = all.FilterYear(year)
	}
	var previous dataset.View
	hasPrevious := false
	if year != 0 {
		previous = all.FilterYear(year - 1)
		hasPrevious = !previous.Empty()
	}
	labels := metricLabels[lang]
	if labels == nil {
		labels = metricLabels[PT]
	}
	h := Headline{Year: year}
	for _, m := range []struct {
		key   string
		count func(dataset.View) int
	}{
		{"total", func(v dataset.View) int { return v.Len() }},
		{"drivers_passengers", countDriversPassengers},
		{"pedestrians", countPedestrians},
	} {
		metric := Metric{Key: m.key, Label: labels[m.key], Value: m.count(current)}
		if hasPrevious {
			d := metric.Value - m.count(previous)
			metric.Delta = &d
		}
		h.Metrics = append(h.Metrics, metric)
	}
	return h
}

func countDriversPassengers(v dataset.View) int {
	return v.Filter(func(r dataset.Record) bool {
		if !r.VictimType.Valid {
			return false
		}
		t := dataset.Fold(r.VictimType.V)
		return t == "condutor" || t == "passageiro"
	}).Len()
}

func countPedestrians(v dataset.View) int {
	return v.Filter(func(r dataset.Record) bool {
		return r.Locomotion.Valid && dataset.Fold(r.Locomotion.V) == "pedestre"
	}).Len()
}
