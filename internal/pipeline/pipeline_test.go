package pipeline

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"TopoSentinel/internal/collector"
	"TopoSentinel/internal/config"
	"TopoSentinel/internal/model"
	"TopoSentinel/internal/recorder"
	"TopoSentinel/internal/topology"
)

// countingEngine counts Persistence invocations around a real engine.
type countingEngine struct {
	calls int
	inner topology.Engine
}

func (e *countingEngine) Persistence(d mat.Symmetric, maxDim int) ([]model.Interval, error) {
	e.calls++
	return e.inner.Persistence(d, maxDim)
}

// capturingRecorder records call counts for each Recorder method.
type capturingRecorder struct {
	runs, windows, diagrams, distances int
}

func (r *capturingRecorder) RecordRun(_ *recorder.RunRecord) error { r.runs++; return nil }
func (r *capturingRecorder) RecordWindow(_ string, _ *model.Window) error {
	r.windows++
	return nil
}
func (r *capturingRecorder) RecordDiagram(_ string, _ *model.Diagram) error {
	r.diagrams++
	return nil
}
func (r *capturingRecorder) RecordDistance(_ string, _ *recorder.DistanceRecord) error {
	r.distances++
	return nil
}
func (r *capturingRecorder) Close() error { return nil }

// fixturePrices builds 43 daily prices for 4 tickers, giving exactly 42
// return rows. Phases differ per ticker so no window column is constant
// or perfectly correlated.
func fixturePrices() map[string][]model.PricePoint {
	tickers := []string{"AAA", "BBB", "CCC", "DDD"}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make(map[string][]model.PricePoint, len(tickers))
	for k, sym := range tickers {
		points := make([]model.PricePoint, 43)
		for t := 0; t < 43; t++ {
			points[t] = model.PricePoint{
				Date:     base.AddDate(0, 0, t),
				AdjClose: 100 + 5*math.Sin(0.37*float64(t)+float64(k)) + 0.13*float64(t)*float64(k+1),
			}
		}
		data[sym] = points
	}
	return data
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Tickers:       []string{"AAA", "BBB", "CCC", "DDD"},
		StartDate:     "2020-01-01",
		EndDate:       "2020-02-12",
		WindowLength:  21,
		MaxDimension:  1,
		MissingPolicy: config.PolicyZero,
	}
	cfg.DataSource.Provider = "mock"
	cfg.DataSource.Retries = 1
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig()
	col := collector.NewCollector(&collector.MockFetcher{Data: fixturePrices()}, cfg.Tickers, 1)
	engine := &countingEngine{inner: topology.NewRipsEngine()}
	rec := &capturingRecorder{}

	res, err := New(cfg, col, engine, nil, rec).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(res.Returns.Rows); got != 42 {
		t.Fatalf("expected 42 return rows, got %d", got)
	}
	if got := len(res.Windows); got != 2 {
		t.Fatalf("expected 2 windows, got %d", got)
	}
	for _, w := range res.Windows {
		if w.Len() != 21 {
			t.Errorf("window %d has %d rows, want 21", w.Index, w.Len())
		}
	}
	if engine.calls != 2 {
		t.Errorf("homology engine invoked %d times, want exactly 2", engine.calls)
	}
	if got := len(res.Diagrams); got != 2 {
		t.Fatalf("expected 2 diagrams, got %d", got)
	}
	for i, d := range res.Diagrams {
		if d.WindowIndex != i {
			t.Errorf("diagram %d carries window index %d", i, d.WindowIndex)
		}
		if !d.Start.Equal(res.Windows[i].Start) {
			t.Errorf("diagram %d start %v != window start %v", i, d.Start, res.Windows[i].Start)
		}
	}

	for dim := 0; dim <= cfg.MaxDimension; dim++ {
		first, ok := res.FromFirst[dim]
		if !ok || len(first) != 2 {
			t.Fatalf("FromFirst[%d] missing or wrong length: %v", dim, first)
		}
		if first[0] != 0 {
			t.Errorf("FromFirst[%d][0] = %v, want 0 (self-comparison)", dim, first[0])
		}
		prev := res.FromPrevious[dim]
		if prev[0] != 0 {
			t.Errorf("FromPrevious[%d][0] = %v, want 0", dim, prev[0])
		}
		if first[1] < 0 || prev[1] < 0 {
			t.Errorf("dim %d distances must be non-negative: %v, %v", dim, first[1], prev[1])
		}
		if first[1] != prev[1] {
			t.Errorf("with 2 windows both framings compare 0 vs 1: %v != %v", first[1], prev[1])
		}
	}

	if rec.runs != 1 {
		t.Errorf("expected 1 run record, got %d", rec.runs)
	}
	if rec.windows != 2 || rec.diagrams != 2 {
		t.Errorf("expected 2 window + 2 diagram records, got %d + %d", rec.windows, rec.diagrams)
	}
	// 2 dims x 2 windows x 2 baselines
	if rec.distances != 8 {
		t.Errorf("expected 8 distance records, got %d", rec.distances)
	}
}

func TestRun_FetchFailureFailsRun(t *testing.T) {
	cfg := testConfig()
	cfg.Tickers = append(cfg.Tickers, "GONE")
	col := collector.NewCollector(&collector.MockFetcher{Data: fixturePrices()}, cfg.Tickers, 1)

	_, err := New(cfg, col, topology.NewRipsEngine(), nil, recorder.NewNoopRecorder()).Run()
	if err == nil {
		t.Fatal("expected run to fail on missing ticker data")
	}
}

func TestRun_DistanceMatrixDimensions(t *testing.T) {
	cfg := testConfig()
	col := collector.NewCollector(&collector.MockFetcher{Data: fixturePrices()}, cfg.Tickers, 1)

	var dims []int
	probe := &probeEngine{dims: &dims}
	_, err := New(cfg, col, probe, nil, recorder.NewNoopRecorder()).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dims) != 2 {
		t.Fatalf("expected 2 matrices, got %d", len(dims))
	}
	for i, n := range dims {
		if n != 4 {
			t.Errorf("matrix %d is %dx%d, want 4x4", i, n, n)
		}
	}
}

// probeEngine records the size of every matrix it receives and returns a
// fixed minimal diagram.
type probeEngine struct {
	dims *[]int
}

func (e *probeEngine) Persistence(d mat.Symmetric, _ int) ([]model.Interval, error) {
	*e.dims = append(*e.dims, d.SymmetricDim())
	return []model.Interval{{Dimension: 0, Birth: 0, Death: math.Inf(1)}}, nil
}
