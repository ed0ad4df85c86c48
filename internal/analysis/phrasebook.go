package analysis

import (
	"fmt"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// Lang selects the phrasebook used to render contexts and prompts.
type Lang string

const (
	PT Lang = "pt"
	EN Lang = "en"
)

// ParseLang maps user input to a Lang, defaulting to Portuguese.
func ParseLang(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "en-us", "english":
		return EN
	default:
		return PT
	}
}

// Phrasebook holds every sentence template of one language.
type Phrasebook struct {
	Lang Lang

	YearCount        string
	AskYear          string
	AgeMode          string
	NeighborhoodMode string
	NoNeighborhood   string
	RoadMode         string
	WeekdayHeader    string
	DeathsLine       string
	HourMode         string
	SexMode          string
	MonthMode        string
	DayMode          string
	ShiftMode        string
	LocomotionMode   string
	AccidentHeader   string
	OccurrencesLine  string
	PeakHeader       string
	PeakLine         string
	NeighborhoodMean string
	VictimShare      string
	ShareLine        string
	AgeMean          string
	DecJanHeader     string
	DecJanLine       string
	DecJanInsight    string
	DecJanSummary    string
	DecJanItem       string
	DecJanEmpty      string
	VictimYear       string
	NoData           string
	Default          string

	Prompt      string
	ErrorPrefix string

	Months   [12]string
	Subjects map[dataset.Column]string
}

var portuguese = Phrasebook{
	Lang:             PT,
	YearCount:        "No ano de %d, ocorreram %d óbitos em %s.",
	AskYear:          "Por favor, especifique o ano na pergunta (por exemplo: Quantos óbitos ocorreram em 2021?).",
	AgeMode:          "A faixa etária mais afetada por acidentes é %s, com %d óbitos.",
	NeighborhoodMode: "O bairro com mais óbitos é %s, com %d óbitos.",
	NoNeighborhood:   "Não há dados disponíveis sobre os bairros identificados.",
	RoadMode:         "O tipo de via com mais óbitos é %s, com %d óbitos.",
	WeekdayHeader:    "Número de óbitos por dia da semana:\n",
	DeathsLine:       "%s: %d óbitos\n",
	HourMode:         "O horário com mais óbitos é às %s horas, com %d óbitos.",
	SexMode:          "O sexo com mais acidentes é %s, com %d ocorrências.",
	MonthMode:        "O mês com mais acidentes é %s, com %d acidentes.",
	DayMode:          "O dia do mês com mais acidentes é %s, com %d acidentes.",
	ShiftMode:        "O período do dia com mais óbitos é %s, com %d óbitos.",
	LocomotionMode:   "O meio de locomoção com mais óbitos é %s, com %d óbitos.",
	AccidentHeader:   "Os tipos de acidentes mais comuns são:\n",
	OccurrencesLine:  "%s: %d ocorrências\n",
	PeakHeader:       "Meses com os maiores picos de óbitos por ano:\n",
	PeakLine:         "%s: %d - %d óbitos\n",
	NeighborhoodMean: "A média de óbitos por bairro é de %d óbitos por bairro.",
	VictimShare:      "Proporção de óbitos por tipo de vítima (em %):\n",
	ShareLine:        "%s: %.2f%%\n",
	AgeMean:          "A idade média das vítimas de acidentes de trânsito é de %d anos.",
	DecJanHeader:     "Comparativo de óbitos entre dezembro e janeiro (2019-2023):\n",
	DecJanLine:       "Ano: %d - Dezembro: %d óbitos, Janeiro: %d óbitos - Diferença: %d óbitos\n",
	DecJanInsight: "\nEmbora os meses de dezembro e janeiro sejam frequentemente associados a festividades e férias, " +
		"os dados indicam uma variação nos óbitos ao longo dos anos.\n" +
		"Nos últimos dois anos (2022 e 2023), houve uma leve redução, embora não muito expressiva. " +
		"Em contraste, 2020 e 2021 registraram um aumento no número de óbitos.\n" +
		"Esse padrão sugere uma tendência de estabilização nas ocorrências de óbitos durante esse período, " +
		"com uma diminuição gradual ao longo dos últimos anos, apesar das festividades típicas desse período.\n",
	DecJanSummary: "\nResumo: %s",
	DecJanItem:    "%d: %d óbitos",
	DecJanEmpty:   "Não há dados suficientes para comparar os óbitos entre dezembro e janeiro nos anos de 2019 a 2023.",
	VictimYear:    "Distribuição de óbitos por tipo de vítima em %d:\n",
	NoData:        "Não há dados disponíveis sobre %s.",
	Default:       "Desculpe, não tenho informações para responder a essa pergunta.",
	Prompt:        "%s\n\nCom base nas informações acima, responda à seguinte pergunta:\n%s\nResposta:",
	ErrorPrefix:   "Erro ao conectar com a API: ",
	Months: [12]string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"},
	Subjects: map[dataset.Column]string{
		dataset.ColYear:         "os anos",
		dataset.ColAgeBracket:   "a faixa etária",
		dataset.ColNeighborhood: "os bairros",
		dataset.ColRoadType:     "o tipo de via",
		dataset.ColWeekday:      "o dia da semana",
		dataset.ColHour:         "o horário",
		dataset.ColSex:          "o sexo das vítimas",
		dataset.ColMonth:        "o mês",
		dataset.ColDayOfMonth:   "o dia do mês",
		dataset.ColShift:        "o período do dia",
		dataset.ColLocomotion:   "o meio de locomoção",
		dataset.ColAccidentType: "o tipo de acidente",
		dataset.ColVictimType:   "o tipo de vítima",
		dataset.ColVictimAge:    "a idade das vítimas",
	},
}

var english = Phrasebook{
	Lang:             EN,
	YearCount:        "In %d, %d deaths occurred in %s.",
	AskYear:          "Please specify the year in the question (for example: How many deaths occurred in 2021?).",
	AgeMode:          "The most affected age bracket is %s, with %d deaths.",
	NeighborhoodMode: "The neighborhood with the most deaths is %s, with %d deaths.",
	NoNeighborhood:   "There is no data available about identified neighborhoods.",
	RoadMode:         "The road type with the most deaths is %s, with %d deaths.",
	WeekdayHeader:    "Number of deaths per weekday:\n",
	DeathsLine:       "%s: %d deaths\n",
	HourMode:         "The hour with the most deaths is %s o'clock, with %d deaths.",
	SexMode:          "The sex with the most accidents is %s, with %d occurrences.",
	MonthMode:        "The month with the most accidents is %s, with %d accidents.",
	DayMode:          "The day of the month with the most accidents is %s, with %d accidents.",
	ShiftMode:        "The part of the day with the most deaths is %s, with %d deaths.",
	LocomotionMode:   "The locomotion mode with the most deaths is %s, with %d deaths.",
	AccidentHeader:   "The most common accident types are:\n",
	OccurrencesLine:  "%s: %d occurrences\n",
	PeakHeader:       "Months with the highest yearly death peaks:\n",
	PeakLine:         "%s: %d - %d deaths\n",
	NeighborhoodMean: "The average number of deaths per neighborhood is %d.",
	VictimShare:      "Share of deaths per victim type (in %):\n",
	ShareLine:        "%s: %.2f%%\n",
	AgeMean:          "The average age of traffic accident victims is %d years.",
	DecJanHeader:     "Comparison of deaths between December and January (2019-2023):\n",
	DecJanLine:       "Year: %d - December: %d deaths, January: %d deaths - Difference: %d deaths\n",
	DecJanInsight: "\nAlthough December and January are often associated with holidays and vacations, " +
		"the data show variation in deaths over the years.\n" +
		"In the last two years (2022 and 2023) there was a slight reduction, though not a large one. " +
		"In contrast, 2020 and 2021 recorded an increase in deaths.\n" +
		"This pattern suggests a stabilizing trend in deaths during this period, " +
		"with a gradual decrease over recent years despite the typical holiday season.\n",
	DecJanSummary: "\nSummary: %s",
	DecJanItem:    "%d: %d deaths",
	DecJanEmpty:   "There is not enough data to compare deaths between December and January in the years 2019 to 2023.",
	VictimYear:    "Distribution of deaths per victim type in %d:\n",
	NoData:        "There is no data available about %s.",
	Default:       "I don't have information to answer that.",
	Prompt:        "%s\n\nBased on the information above, answer the following question:\n%s\nAnswer:",
	ErrorPrefix:   "Error connecting to the API: ",
	Months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	Subjects: map[dataset.Column]string{
		dataset.ColYear:         "the years",
		dataset.ColAgeBracket:   "the age bracket",
		dataset.ColNeighborhood: "the neighborhoods",
		dataset.ColRoadType:     "the road type",
		dataset.ColWeekday:      "the weekday",
		dataset.ColHour:         "the hour",
		dataset.ColSex:          "the victims' sex",
		dataset.ColMonth:        "the month",
		dataset.ColDayOfMonth:   "the day of the month",
		dataset.ColShift:        "the part of the day",
		dataset.ColLocomotion:   "the locomotion mode",
		dataset.ColAccidentType: "the accident type",
		dataset.ColVictimType:   "the victim type",
		dataset.ColVictimAge:    "the victims' age",
	},
}

// PhrasebookFor returns the phrasebook of lang.
func PhrasebookFor(lang Lang) Phrasebook {
	if lang == EN {
		return english
	}
	return portuguese
}

// NoDataAbout renders the no-data sentence for a column.
func (p Phrasebook) NoDataAbout(c dataset.Column) string {
	return fmt.Sprintf(p.NoData, p.Subjects[c])
}

// BuildPrompt joins a context and the asked question with the instruction and answer cue.
func (p Phrasebook) BuildPrompt(context, question string) string {
	return fmt.Sprintf(p.Prompt, context, question)
}

// MonthName returns the localized name of month n (1..12).
func (p Phrasebook) MonthName(n int) string {
	if n < 1 || n > 12 {
		return fmt.Sprint(n)
	}
	return p.Months[n-1]
}
