package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadOptions controls how a source file is read.
type LoadOptions struct {
	// Delimiter for delimited text. Zero selects ';' (or '\t' for .tsv).
	Delimiter rune
	// YearFrom and YearTo bound the loaded years inclusively. Zero leaves a side open.
	YearFrom int
	YearTo   int
	// SheetName or 1-based SheetIndex select the workbook sheet for .xlsx sources.
	SheetName  string
	SheetIndex int
}

// Format reads a tabular source into a header and string rows.
type Format interface {
	CanLoad(path string) bool
	Rows(path string, opt LoadOptions) (header []string, rows [][]string, err error)
}

var formats []Format

// RegisterFormat adds a source format to the registry.
func RegisterFormat(f Format) {
	formats = append(formats, f)
}

func init() {
	RegisterFormat(csvFormat{})
	RegisterFormat(xlsxFormat{})
}

// ErrUnsupported indicates no registered format can read the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load reads the dataset at path, folds null markers, derives shifts from the
// hour column and applies the year range.
func Load(path string, opt LoadOptions) (View, error) {
	if _, err := os.Stat(path); err != nil {
		return View{}, fmt.Errorf("open dataset: %w", err)
	}
	for _, f := range formats {
		if !f.CanLoad(path) {
			continue
		}
		header, rows, err := f.Rows(path, opt)
		if err != nil {
			return View{}, err
		}
		return FromRows(header, rows, opt), nil
	}
	return View{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// FromRows builds a View from a header and string rows. Header names are matched
// case- and accent-insensitively; columns absent from the header load as null.
func FromRows(header []string, rows [][]string, opt LoadOptions) View {
	index := map[Column]int{}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if c, ok := columnByHeader(h); ok {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
	}
	cell := func(row []string, c Column) string {
		i, ok := index[c]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var r Record
		if n, ok := parseWhole(cell(row, ColYear)); ok {
			r.Year = Int(n)
		}
		if s, ok := parseText(cell(row, ColAgeBracket)); ok {
			r.AgeBracket = Str(s)
		}
		if s, ok := parseText(cell(row, ColNeighborhood)); ok {
			r.Neighborhood = Str(s)
		}
		if s, ok := parseText(cell(row, ColRoadType)); ok {
			r.RoadType = Str(s)
		}
		if s, ok := parseText(cell(row, ColWeekday)); ok {
			r.Weekday = Str(s)
		}
		if n, ok := parseWhole(cell(row, ColHour)); ok {
			r.Hour = Int(n)
		}
		if s, ok := parseText(cell(row, ColSex)); ok {
			r.Sex = Str(s)
		}
		if s, ok := parseText(cell(row, ColMonth)); ok {
			if n, isNum := parseWhole(s); isNum {
				s = strconv.FormatInt(n, 10)
			}
			r.Month = Str(s)
		}
		if n, ok := parseWhole(cell(row, ColDayOfMonth)); ok {
			r.DayOfMonth = Int(n)
		}
		if s, ok := parseText(cell(row, ColLocomotion)); ok {
			r.Locomotion = Str(s)
		}
		if s, ok := parseText(cell(row, ColAccidentType)); ok {
			r.AccidentType = Str(s)
		}
		if s, ok := parseText(cell(row, ColVictimType)); ok {
			r.VictimType = Str(s)
		}
		if f, ok := parseReal(cell(row, ColVictimAge)); ok {
			r.VictimAge = Float(f)
		}
		records = append(records, r)
	}
	// The source Turno column is ignored; shifts always follow the hour.
	DeriveShifts(records)
	return View{records: records}.FilterYearRange(opt.YearFrom, opt.YearTo)
}

var headerAliases = map[string]Column{
	"ano":                         ColYear,
	"faixa etaria":                ColAgeBracket,
	"bairro":                      ColNeighborhood,
	"tipo de via":                 ColRoadType,
	"dia da semana":               ColWeekday,
	"hora do sinistro":            ColHour,
	"hora":                        ColHour,
	"sexo":                        ColSex,
	"mes do sinistro":             ColMonth,
	"mes":                         ColMonth,
	"dia do sinistro":             ColDayOfMonth,
	"turno":                       ColShift,
	"meio de locomocao da vitima": ColLocomotion,
	"tipo de sinistro":            ColAccidentType,
	"tipo de vitima":              ColVictimType,
	"idade da vitima":             ColVictimAge,
}

func columnByHeader(h string) (Column, bool) {
	c, ok := headerAliases[Fold(h)]
	return c, ok
}

type csvFormat struct{}

func (csvFormat) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (csvFormat) Rows(path string, opt LoadOptions) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && st.Size() == 0 {
		return nil, nil, nil
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ';'
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			delim = '\t'
		}
	}
	df := dataframe.ReadCSV(f,
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>", "NAO DISPONIVEL", "NÃO DISPONÍVEL"}),
	)
	if df.Err != nil {
		// gota refuses a header without rows; that is an empty dataset
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv: %w", df.Err)
	}
	recs := df.Records()
	if len(recs) == 0 {
		return nil, nil, nil
	}
	return recs[0], recs[1:], nil
}
