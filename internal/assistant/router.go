package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

const (
	DefaultMenuMaxTokens = 500
	DefaultTextMaxTokens = 200
)

// Config is everything the router needs to reach a model. Nothing is read from the
// environment here; callers resolve keys and defaults first.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	// Runtime, when set, is used instead of building one from Provider.
	Runtime ai.Runtime
	// Transport holds timeouts, retries and endpoint overrides for the built runtime.
	Transport ai.RuntimeConfig

	Lang          analysis.Lang
	City          string
	MenuMaxTokens int
	TextMaxTokens int
	Temperature   float64
}

// Answer is the outcome of one question. Failed answers carry the localized error
// text in Text; there is no separate error value.
type Answer struct {
	Question   string     `json:"question"`
	QuestionID QuestionID `json:"question_id,omitempty"`
	Category   Category   `json:"category,omitempty"`
	Context    string     `json:"context"`
	Prompt     string     `json:"prompt"`
	MaxTokens  int        `json:"max_tokens"`
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Text       string     `json:"answer"`
	Failed     bool       `json:"failed"`
	RequestID  string     `json:"request_id,omitempty"`
	Usage      ai.Usage   `json:"usage"`
	// Err is the underlying failure, kept for callers that want to inspect its type.
	Err error `json:"-"`
}

// Router resolves questions to context builders and sends the resulting prompt to
// the configured runtime.
type Router struct {
	cfg      Config
	contexts *analysis.Contexts
	builders map[QuestionID]analysis.Builder
}

// New returns a router for cfg, filling unset token limits and provider.
func New(cfg Config) *Router {
	if cfg.Provider == "" {
		cfg.Provider = ai.ProviderMaritaca
	}
	if cfg.Model == "" {
		cfg.Model = ai.DefaultModel(cfg.Provider)
	}
	if cfg.MenuMaxTokens <= 0 {
		cfg.MenuMaxTokens = DefaultMenuMaxTokens
	}
	if cfg.TextMaxTokens <= 0 {
		cfg.TextMaxTokens = DefaultTextMaxTokens
	}
	if cfg.Lang == "" {
		cfg.Lang = analysis.PT
	}
	c := analysis.NewContexts(cfg.Lang, cfg.City)
	return &Router{
		cfg:      cfg,
		contexts: c,
		builders: map[QuestionID]analysis.Builder{
			QDeaths2021:        c.DeathsInYear,
			QDecemberJanuary:   c.DecemberJanuary,
			QAgeBracket:        c.AgeBracketMode,
			QNeighborhood:      c.NeighborhoodMode,
			QVictimTypeShares:  c.VictimTypeShares,
			QRoadType:          c.RoadTypeMode,
			QWeekday:           c.WeekdayCounts,
			QHour:              c.HourMode,
			QSex:               c.SexMode,
			QMonth:             c.MonthMode,
			QDayOfMonth:        c.DayOfMonthMode,
			QShift:             c.ShiftMode,
			QLocomotion:        c.LocomotionMode,
			QAccidentTypes:     c.TopAccidentTypes,
			QMonthlyPeaks:      c.MonthlyPeaks,
			QNeighborhoodMean:  c.MeanPerNeighborhood,
			QMeanAge:           c.MeanAge,
			QVictimTypesInYear: c.VictimTypesInYear,
		},
	}
}

// Lang returns the language contexts and errors are rendered in.
func (r *Router) Lang() analysis.Lang { return r.cfg.Lang }

// Builder returns the context builder of id; unknown ids get the fallback builder.
func (r *Router) Builder(id QuestionID) analysis.Builder {
	if b, ok := r.builders[id]; ok {
		return b
	}
	return r.contexts.Fallback
}

// PrepareMenu builds the context and prompt for a menu question without calling a model.
func (r *Router) PrepareMenu(id QuestionID, v dataset.View) *Answer {
	question := id.Text(r.cfg.Lang)
	return r.prepare(question, id, "", r.Builder(id), r.cfg.MenuMaxTokens, v)
}

// PrepareText builds the context and prompt for free text. Text equal to a menu entry
// is treated as that entry; anything else goes through Classify.
func (r *Router) PrepareText(text string, v dataset.View) *Answer {
	if id, ok := MatchMenu(text); ok {
		return r.prepare(text, id, "", r.Builder(id), r.cfg.MenuMaxTokens, v)
	}
	cat := Classify(text)
	var b analysis.Builder
	switch cat {
	case CategoryYear:
		b = r.contexts.DeathsInYear
	case CategoryAgeBracket:
		b = r.contexts.AgeBracketMode
	case CategoryWeekday:
		b = r.contexts.WeekdayCounts
	default:
		b = r.contexts.Fallback
	}
	return r.prepare(text, 0, cat, b, r.cfg.TextMaxTokens, v)
}

func (r *Router) prepare(question string, id QuestionID, cat Category, b analysis.Builder, maxTokens int, v dataset.View) *Answer {
	ctxText := b(v, question)
	return &Answer{
		Question:   question,
		QuestionID: id,
		Category:   cat,
		Context:    ctxText,
		Prompt:     r.contexts.Phrasebook().BuildPrompt(ctxText, question),
		MaxTokens:  maxTokens,
		Provider:   r.cfg.Provider,
		Model:      r.cfg.Model,
	}
}

// AskMenu answers a menu question.
func (r *Router) AskMenu(ctx context.Context, id QuestionID, v dataset.View) (ans *Answer) {
	defer r.recoverInto(&ans, id.Text(r.cfg.Lang))
	ans = r.PrepareMenu(id, v)
	r.Dispatch(ctx, ans)
	return ans
}

// AskText answers a free-text question.
func (r *Router) AskText(ctx context.Context, text string, v dataset.View) (ans *Answer) {
	defer r.recoverInto(&ans, text)
	ans = r.PrepareText(text, v)
	r.Dispatch(ctx, ans)
	return ans
}

// Dispatch sends a prepared prompt and stores the answer, or the localized error
// text, in ans. It never panics.
func (r *Router) Dispatch(ctx context.Context, ans *Answer) {
	if ans == nil {
		return
	}
	defer r.recoverInto(&ans, ans.Question)
	rt, err := r.runtime()
	if err != nil {
		r.fail(ans, err)
		return
	}
	resp, err := rt.Generate(ctx, ai.UserPrompt(ans.Model, ans.Prompt, ans.MaxTokens, r.cfg.Temperature))
	if err != nil {
		r.fail(ans, err)
		return
	}
	text, err := resp.Answer()
	if err == nil && text == "" {
		err = errors.New("empty answer")
	}
	if err != nil {
		r.fail(ans, err)
		return
	}
	ans.Text = text
	ans.Failed = false
	ans.Err = nil
	ans.RequestID = resp.RequestID
	ans.Usage = resp.Usage
}

func (r *Router) runtime() (ai.Runtime, error) {
	if r.cfg.Runtime != nil {
		return r.cfg.Runtime, nil
	}
	rc := r.cfg.Transport
	if rc.APIKey == "" {
		rc.APIKey = r.cfg.APIKey
	}
	rt, ok := ai.GetRuntime(r.cfg.Provider, rc)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", r.cfg.Provider, strings.Join(ai.Providers(), ", "))
	}
	return rt, nil
}

func (r *Router) fail(ans *Answer, err error) {
	ans.Failed = true
	ans.Err = err
	ans.Text = r.contexts.Phrasebook().ErrorPrefix + err.Error()
}

func (r *Router) recoverInto(ans **Answer, question string) {
	p := recover()
	if p == nil {
		return
	}
	if *ans == nil {
		*ans = &Answer{Question: question, Provider: r.cfg.Provider, Model: r.cfg.Model}
	}
	r.fail(*ans, fmt.Errorf("%v", p))
}

// IsFailure reports whether text is a localized router error message.
func IsFailure(text string) bool {
	for _, lang := range []analysis.Lang{analysis.PT, analysis.EN} {
		if strings.HasPrefix(text, analysis.PhrasebookFor(lang).ErrorPrefix) {
			return true
		}
	}
	return false
}
