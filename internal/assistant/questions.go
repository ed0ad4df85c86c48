package assistant

import (
	"fmt"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// QuestionID identifies one entry of the fixed question menu.
type QuestionID int

const (
	QDeaths2021 QuestionID = iota + 1
	QDecemberJanuary
	QAgeBracket
	QNeighborhood
	QVictimTypeShares
	QRoadType
	QWeekday
	QHour
	QSex
	QMonth
	QDayOfMonth
	QShift
	QLocomotion
	QAccidentTypes
	QMonthlyPeaks
	QNeighborhoodMean
	QMeanAge
	QVictimTypesInYear
)

// Question is a menu entry with its text in every supported language.
type Question struct {
	ID QuestionID `json:"id"`
	PT string     `json:"pt"`
	EN string     `json:"en"`
}

var menu = []Question{
	{QDeaths2021, "Quantos óbitos ocorreram em 2021?", "How many deaths occurred in 2021?"},
	{QDecemberJanuary, "Como foi o comparativo de óbitos entre dezembro e janeiro nos anos de 2019 a 2023?", "How did deaths in December compare with January from 2019 to 2023?"},
	{QAgeBracket, "Qual a faixa etária mais afetada por acidentes?", "Which age bracket is most affected by accidents?"},
	{QNeighborhood, "Em qual bairro ocorreram mais óbitos?", "Which neighborhood had the most deaths?"},
	{QVictimTypeShares, "Qual a proporção de óbitos por tipo de vítima (condutor, passageiro, pedestre)?", "What is the share of deaths by victim type (driver, passenger, pedestrian)?"},
	{QRoadType, "Qual o tipo de via com mais óbitos?", "Which road type has the most deaths?"},
	{QWeekday, "Quantos óbitos ocorreram em cada dia da semana?", "How many deaths occurred on each weekday?"},
	{QHour, "Qual o horário com mais óbitos?", "Which hour has the most deaths?"},
	{QSex, "Qual o sexo com mais acidentes?", "Which sex has the most accidents?"},
	{QMonth, "Qual o mês com mais acidentes?", "Which month has the most accidents?"},
	{QDayOfMonth, "Qual o dia do mês com mais acidentes?", "Which day of the month has the most accidents?"},
	{QShift, "Qual o período do dia com mais óbitos?", "Which period of the day has the most deaths?"},
	{QLocomotion, "Qual o meio de locomoção com mais óbitos?", "Which means of locomotion has the most deaths?"},
	{QAccidentTypes, "Quais os tipos de acidentes mais comuns?", "What are the most common accident types?"},
	{QMonthlyPeaks, "Em quais meses ocorrem mais óbitos em comparação com outros anos?", "In which months do deaths peak compared with other years?"},
	{QNeighborhoodMean, "Qual a média de óbitos por bairro?", "What is the average number of deaths per neighborhood?"},
	{QMeanAge, "Qual a idade média das vítimas de acidentes de trânsito?", "What is the average age of traffic accident victims?"},
	{QVictimTypesInYear, "Qual a distribuição de óbitos por tipo de vítima em 2022?", "What is the distribution of deaths by victim type in 2022?"},
}

// Menu returns a copy of the fixed question menu in display order.
func Menu() []Question {
	out := make([]Question, len(menu))
	copy(out, menu)
	return out
}

// Valid reports whether id names a menu entry.
func (id QuestionID) Valid() bool { return id >= QDeaths2021 && id <= QVictimTypesInYear }

// Text returns the menu text of id in lang, or "" for unknown ids.
func (id QuestionID) Text(lang analysis.Lang) string {
	if !id.Valid() {
		return ""
	}
	q := menu[id-1]
	if lang == analysis.EN {
		return q.EN
	}
	return q.PT
}

func (id QuestionID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("QuestionID(%d)", int(id))
	}
	return fmt.Sprintf("Q%d", int(id))
}

// MatchMenu finds the menu entry whose text, in either language, equals text
// ignoring case, accents and surrounding whitespace.
func MatchMenu(text string) (QuestionID, bool) {
	key := dataset.Fold(text)
	if key == "" {
		return 0, false
	}
	for _, q := range menu {
		if dataset.Fold(q.PT) == key || dataset.Fold(q.EN) == key {
			return q.ID, true
		}
	}
	return 0, false
}
