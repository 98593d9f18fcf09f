package engine

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/daryltucker/cep-bench/internal/config"
	"github.com/daryltucker/cep-bench/internal/model"
)

// scriptedExecutor replays fixed latencies per API and records call order.
type scriptedExecutor struct {
	latencies map[model.API][]int
	failed    map[model.API][]bool
	calls     []model.API
}

func (s *scriptedExecutor) Execute(_ context.Context, _ string, api model.API) model.Outcome {
	n := 0
	for _, c := range s.calls {
		if c == api {
			n++
		}
	}
	s.calls = append(s.calls, api)

	out := model.Outcome{API: api, Result: "Av. Test"}
	if l := s.latencies[api]; n < len(l) {
		out.LatencyMS = l[n]
	}
	if f := s.failed[api]; n < len(f) && f[n] {
		out.Failed = true
		out.Result = model.TimeoutResult
	}
	return out
}

func benchConfig(trials int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.TrialCount = trials
	return cfg
}

func TestBench_TrialNumbering(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		exec := &scriptedExecutor{}
		r := Bench(context.Background(), benchConfig(n), exec, nil)
		if len(r.Trials) != n {
			t.Fatalf("n=%d: got %d trials", n, len(r.Trials))
		}
		for i, tr := range r.Trials {
			if tr.Number != i+1 {
				t.Fatalf("n=%d: trial %d numbered %d", n, i, tr.Number)
			}
		}
		if len(exec.calls) != 2*n {
			t.Fatalf("n=%d: %d calls, want %d", n, len(exec.calls), 2*n)
		}
	}
}

func TestBench_ZeroTrialsHasNoData(t *testing.T) {
	r := Bench(context.Background(), benchConfig(0), &scriptedExecutor{}, nil)
	if r.ViaCEP.Mean.Valid || r.BrasilAPI.Mean.Valid {
		t.Fatalf("expected no data, got %+v / %+v", r.ViaCEP.Mean, r.BrasilAPI.Mean)
	}
	if r.ViaCEP.Mean.String() != "no data" {
		t.Fatalf("sentinel = %q", r.ViaCEP.Mean.String())
	}
}

func TestBench_SequentialOrder(t *testing.T) {
	exec := &scriptedExecutor{}
	var seen []int
	Bench(context.Background(), benchConfig(3), exec, func(tr model.Trial) {
		seen = append(seen, tr.Number)
	})

	for i, api := range exec.calls {
		want := model.ViaCEP
		if i%2 == 1 {
			want = model.BrasilAPI
		}
		if api != want {
			t.Fatalf("call %d went to %s, want %s", i, api, want)
		}
	}
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Fatalf("onTrial order = %v", seen)
	}
}

func TestMeanOf(t *testing.T) {
	if m := MeanOf([]int{10, 20, 30}); !m.Valid || m.Value != 20 {
		t.Fatalf("mean = %+v, want 20", m)
	}
	if m := MeanOf([]int{1, 2}); m.Value != 2 {
		t.Fatalf("mean of 1,2 = %d, want 2 (half up)", m.Value)
	}
	if m := MeanOf(nil); m.Valid {
		t.Fatalf("empty mean should be invalid")
	}
}

func TestSummarize(t *testing.T) {
	exec := &scriptedExecutor{
		latencies: map[model.API][]int{model.ViaCEP: {10, 3000, 30, 20}},
		failed:    map[model.API][]bool{model.ViaCEP: {false, true, false, false}},
	}
	r := Bench(context.Background(), benchConfig(4), exec, nil)

	st := r.ViaCEP
	if st.Failures != 1 || st.Samples != 4 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.Mean.Value != 765 || st.Min.Value != 10 || st.Max.Value != 3000 || st.Median.Value != 25 {
		t.Fatalf("unexpected stats %+v", st)
	}

	excluded := Summarize(model.ViaCEP, r.Trials, true)
	if excluded.Samples != 3 || excluded.Mean.Value != 20 || excluded.Median.Value != 20 {
		t.Fatalf("unexpected stats with failures excluded %+v", excluded)
	}
}

func TestSummarize_AllFailedExcluded(t *testing.T) {
	exec := &scriptedExecutor{
		latencies: map[model.API][]int{model.BrasilAPI: {3001, 3002}},
		failed:    map[model.API][]bool{model.BrasilAPI: {true, true}},
	}
	cfg := benchConfig(2)
	cfg.ExcludeFailedFromMean = true

	r := Bench(context.Background(), cfg, exec, nil)
	if r.BrasilAPI.Mean.Valid || r.BrasilAPI.Failures != 2 {
		t.Fatalf("expected no data, got %+v", r.BrasilAPI)
	}
}

// fakeAPIs serves {"logradouro":"Av. Test"} and advances clock by the
// scripted latency of each API, in call order.
func fakeAPIs(clock *fakeClock, latencies map[string][]time.Duration) http.RoundTripper {
	next := map[string]int{}
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		host := r.URL.Host
		clock.Advance(latencies[host][next[host]])
		next[host]++
		return jsonResponse(`{"logradouro":"Av. Test"}`), nil
	})
}

func scriptedEngine(cfg *config.Config) *Engine {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	e := New(cfg)
	e.Now = clock.Now
	e.Client = &http.Client{Transport: fakeAPIs(clock, map[string][]time.Duration{
		"viacep.com.br":    {50 * time.Millisecond, 80 * time.Millisecond},
		"brasilapi.com.br": {40 * time.Millisecond, 60 * time.Millisecond},
	})}
	return e
}

func TestBench_EndToEnd(t *testing.T) {
	cfg := benchConfig(2)
	r := Bench(context.Background(), cfg, scriptedEngine(cfg), nil)

	if r.PostalCode != "69023003" || len(r.Trials) != 2 {
		t.Fatalf("unexpected report %+v", r)
	}
	for _, tr := range r.Trials {
		if tr.ViaCEP.Result != "Av. Test" || tr.BrasilAPI.Result != "Av. Test" {
			t.Fatalf("trial %d results: %+v", tr.Number, tr)
		}
	}
	if r.Trials[0].ViaCEP.LatencyMS != 50 || r.Trials[1].ViaCEP.LatencyMS != 80 {
		t.Fatalf("viacep latencies: %+v", r.Trials)
	}
	if r.ViaCEP.Mean.Value != 65 || r.BrasilAPI.Mean.Value != 50 {
		t.Fatalf("means = %s / %s, want 65 / 50", r.ViaCEP.Mean, r.BrasilAPI.Mean)
	}
}

func TestBench_Idempotent(t *testing.T) {
	cfg := benchConfig(2)
	first := Bench(context.Background(), cfg, scriptedEngine(cfg), nil)
	second := Bench(context.Background(), cfg, scriptedEngine(cfg), nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestRun_WritesReportAndFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			_, _ = w.Write([]byte(`{"logradouro":"Rua X"}`))
			return
		}
		_, _ = w.Write([]byte(`{"street":"Rua X"}`))
	}))
	defer srv.Close()

	saved := URLTemplates
	URLTemplates = map[model.API]string{
		model.ViaCEP:    srv.URL + "/ws/%s/json/",
		model.BrasilAPI: srv.URL + "/api/cep/v2/%s",
	}
	defer func() { URLTemplates = saved }()

	cfg := benchConfig(3)
	cfg.OutputDir = filepath.Join(t.TempDir(), "results")

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Count(buf.String(), "Rua X"); got != 6 {
		t.Fatalf("expected 6 result cells, got %d:\n%s", got, buf.String())
	}

	csvData, err := os.ReadFile(filepath.Join(cfg.OutputDir, "cep_results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(csvData), "\n"); lines != 4 {
		t.Fatalf("csv lines = %d, want 4", lines)
	}

	jsonData, err := os.ReadFile(filepath.Join(cfg.OutputDir, "cep_results.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(string(jsonData), fmt.Sprintf(`"trial":%d`, i)) {
			t.Fatalf("jsonl missing trial %d", i)
		}
	}
}
