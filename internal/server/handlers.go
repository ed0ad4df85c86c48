package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// AskRequest is the body of POST /api/ask. Exactly one of ID and Question is used;
// ID wins when both are set.
type AskRequest struct {
	ID       assistant.QuestionID `json:"id,omitempty"`
	Question string               `json:"question,omitempty"`
	Year     int                  `json:"year,omitempty"`
}

type questionItem struct {
	ID   assistant.QuestionID `json:"id"`
	Text string               `json:"text"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.Dataset().Len()})
}

// Questions lists the menu in the language of ?lang=, defaulting to the server language.
func (s *Server) Questions(w http.ResponseWriter, r *http.Request) {
	lang := s.lang
	if l := r.URL.Query().Get("lang"); l != "" {
		lang = analysis.ParseLang(l)
	}
	menu := assistant.Menu()
	out := make([]questionItem, len(menu))
	for i, q := range menu {
		out[i] = questionItem{ID: q.ID, Text: q.ID.Text(lang)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": out})
}

func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == 0 && strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "id or question is required")
		return
	}
	if req.ID != 0 && !req.ID.Valid() {
		writeError(w, http.StatusBadRequest, "unknown question id "+strconv.Itoa(int(req.ID)))
		return
	}
	v := s.view(req.Year)

	source := "menu"
	start := time.Now()
	var ans *assistant.Answer
	if req.ID != 0 {
		ans = s.router.AskMenu(r.Context(), req.ID, v)
	} else {
		source = "text"
		ans = s.router.AskText(r.Context(), req.Question, v)
	}
	askDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if ans.Failed {
		outcome = "error"
	}
	asksTotal.WithLabelValues(source, outcome).Inc()
	s.record(ans, req.Year)

	// a failed call is still a normal answer for the caller
	writeJSON(w, http.StatusOK, ans)
}

// Context returns the context built for ?id= or ?q= without contacting a model.
func (s *Server) Context(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := s.view(year)
	var ans *assistant.Answer
	switch {
	case q.Get("id") != "":
		id, err := strconv.Atoi(q.Get("id"))
		if err != nil || !assistant.QuestionID(id).Valid() {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		ans = s.router.PrepareMenu(assistant.QuestionID(id), v)
	case strings.TrimSpace(q.Get("q")) != "":
		ans = s.router.PrepareText(q.Get("q"), v)
	default:
		writeError(w, http.StatusBadRequest, "id or q is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question": ans.Question,
		"category": ans.Category,
		"context":  ans.Context,
		"prompt":   ans.Prompt,
	})
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Headlines(s.Dataset(), year, s.lang))
}

func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Summarize("dataset", s.view(year)))
}

// ExportCSV serves the filtered view as a CSV download.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	b, cached, err := s.memo.CSV(s.view(year))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result := "miss"
	if cached {
		result = "hit"
	}
	exportCache.WithLabelValues(result).Inc()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="obitos_final.csv"`)
	w.Header().Set("X-Cache", strings.ToUpper(result))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) view(year int) dataset.View {
	v := s.Dataset()
	if year != 0 {
		return v.FilterYear(year)
	}
	return v
}

// yearParam reads ?year=; empty, "all" and "todos" select every year.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	switch strings.ToLower(raw) {
	case "", "all", "todos":
		return 0, true
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 0 {
		writeError(w, http.StatusBadRequest, "invalid year "+strconv.Quote(raw))
		return 0, false
	}
	return y, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
