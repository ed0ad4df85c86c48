package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/history"
)

type echoRuntime struct {
	mu   sync.Mutex
	fail bool
	last string
}

func (e *echoRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = req.Messages[0].Content
	if e.fail {
		return nil, &ai.UnreachableError{Host: "http://127.0.0.1:1"}
	}
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Content: "resposta"}}}}, nil
}

func fixture() dataset.View {
	return dataset.NewView([]dataset.Record{
		{Year: dataset.Int(2021), Weekday: dataset.Str("Segunda"), VictimType: dataset.Str("Condutor")},
		{Year: dataset.Int(2021), Weekday: dataset.Str("Terça"), VictimType: dataset.Str("Pedestre")},
		{Year: dataset.Int(2020), Weekday: dataset.Str("Segunda"), VictimType: dataset.Str("Condutor")},
	})
}

func newTestServer(t *testing.T, rt ai.Runtime, hist *history.Log) (*Server, *httptest.Server) {
	t.Helper()
	s := New(fixture(), Options{
		Router:  assistant.New(assistant.Config{Runtime: rt}),
		History: hist,
		Quiet:   true,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postAsk(t *testing.T, url string, body any) (*http.Response, assistant.Answer) {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url+"/api/ask", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST /api/ask: %v", err)
	}
	defer resp.Body.Close()
	var ans assistant.Answer
	_ = json.NewDecoder(resp.Body).Decode(&ans)
	return resp, ans
}

func TestHealthAndQuestions(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{}, nil)
	var health map[string]any
	if code := getJSON(t, ts.URL+"/healthz", &health); code != http.StatusOK || health["records"] != float64(3) {
		t.Fatalf("health: %d %v", code, health)
	}
	var qs struct {
		Questions []struct {
			ID   int    `json:"id"`
			Text string `json:"text"`
		} `json:"questions"`
	}
	getJSON(t, ts.URL+"/api/questions?lang=en", &qs)
	if len(qs.Questions) != 18 || qs.Questions[0].Text != "How many deaths occurred in 2021?" {
		t.Fatalf("questions: %+v", qs.Questions)
	}
}

func TestAskMenuAndHistory(t *testing.T) {
	rt := &echoRuntime{}
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatal(err)
	}
	_, ts := newTestServer(t, rt, hist)

	resp, ans := postAsk(t, ts.URL, AskRequest{ID: assistant.QWeekday, Year: 2021})
	if resp.StatusCode != http.StatusOK || ans.Failed || ans.Text != "resposta" {
		t.Fatalf("ask: %d %+v", resp.StatusCode, ans)
	}
	if ans.Context != "Número de óbitos por dia da semana:\nSegunda: 1 óbitos\nTerça: 1 óbitos\n" {
		t.Fatalf("year filter not applied: %q", ans.Context)
	}
	if !strings.HasPrefix(rt.last, ans.Context) {
		t.Fatalf("runtime did not receive the prompt")
	}
	if len(hist.Entries) != 1 || hist.Entries[0].Year != 2021 {
		t.Fatalf("history: %+v", hist.Entries)
	}
	if _, err := os.Stat(hist.Path()); err != nil {
		t.Fatalf("history not saved: %v", err)
	}
}

func TestAskFailureIsNormalAnswer(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{fail: true}, nil)
	resp, ans := postAsk(t, ts.URL, AskRequest{Question: "quantos óbitos no ano de 2021"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !ans.Failed || !strings.HasPrefix(ans.Text, "Erro ao conectar com a API: endpoint unreachable") {
		t.Fatalf("answer: %+v", ans)
	}
	if ans.Category != assistant.CategoryYear {
		t.Fatalf("category: %s", ans.Category)
	}
}

func TestAskValidation(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{}, nil)
	for _, body := range []string{`{}`, `{"id": 99}`, `not json`} {
		resp, err := http.Post(ts.URL+"/api/ask", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: status %d", body, resp.StatusCode)
		}
	}
}

func TestContextEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{}, nil)
	var out map[string]string
	if code := getJSON(t, ts.URL+"/api/context?id=1", &out); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if out["context"] != "No ano de 2021, ocorreram 2 óbitos em Franca." {
		t.Fatalf("context: %q", out["context"])
	}
	if code := getJSON(t, ts.URL+"/api/context?q=qual+a+cor+do+ceu", &out); code != http.StatusOK || out["category"] != "general" {
		t.Fatalf("free text context: %d %v", code, out)
	}
	if code := getJSON(t, ts.URL+"/api/context?id=abc", nil); code != http.StatusBadRequest {
		t.Fatalf("bad id status %d", code)
	}
	if code := getJSON(t, ts.URL+"/api/context?id=1&year=x", nil); code != http.StatusBadRequest {
		t.Fatalf("bad year status %d", code)
	}
}

func TestStats(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{}, nil)
	var h analysis.Headline
	getJSON(t, ts.URL+"/api/stats?year=2021", &h)
	if h.Year != 2021 || len(h.Metrics) != 3 || h.Metrics[0].Value != 2 {
		t.Fatalf("headline: %+v", h)
	}
	if h.Metrics[0].Delta == nil || *h.Metrics[0].Delta != 1 {
		t.Fatalf("delta vs 2020: %+v", h.Metrics[0])
	}
}

func TestExportCSVIsMemoized(t *testing.T) {
	_, ts := newTestServer(t, &echoRuntime{}, nil)
	fetch := func() (string, string) {
		resp, err := http.Get(ts.URL + "/api/export.csv?year=todos")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.Header.Get("X-Cache"), string(b)
	}
	first, body := fetch()
	second, again := fetch()
	if first != "MISS" || second != "HIT" || body != again {
		t.Fatalf("cache headers %s/%s", first, second)
	}
	if strings.Count(body, "\n") != 4 {
		t.Fatalf("csv body:\n%s", body)
	}
}

func TestSwapFlushesExports(t *testing.T) {
	s, ts := newTestServer(t, &echoRuntime{}, nil)
	if _, _, err := s.memo.CSV(s.Dataset()); err != nil {
		t.Fatal(err)
	}
	s.Swap(fixture().FilterYear(2020))
	if s.memo.Len() != 0 {
		t.Fatalf("swap should flush the export cache")
	}
	var health map[string]any
	getJSON(t, ts.URL+"/healthz", &health)
	if health["records"] != float64(1) {
		t.Fatalf("swapped dataset not served: %v", health)
	}
}

func TestWatchAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obitos.csv")
	if err := os.WriteFile(path, []byte("Ano\n2021\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := newTestServer(t, &echoRuntime{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	load := func(p string) (dataset.View, error) { return dataset.Load(p, dataset.LoadOptions{}) }
	if err := s.WatchAndReload(ctx, path, load); err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	if err := os.WriteFile(path, []byte("Ano\n2021\n2022\n2023\n2023\n2019\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Dataset().Len() == 5 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("dataset not reloaded, have %d records", s.Dataset().Len())
}
