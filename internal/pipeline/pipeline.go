// Package pipeline runs the full analysis: price collection, log
// returns, window segmentation, correlation distances, persistent
// homology and diagram-distance series, then reporting and recording.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"TopoSentinel/internal/collector"
	"TopoSentinel/internal/config"
	"TopoSentinel/internal/distance"
	"TopoSentinel/internal/model"
	"TopoSentinel/internal/recorder"
	"TopoSentinel/internal/report"
	"TopoSentinel/internal/returns"
	"TopoSentinel/internal/topology"
	"TopoSentinel/internal/window"
)

// Pipeline wires the pipeline stages together. Reporter may be nil to
// skip chart output.
type Pipeline struct {
	Cfg       *config.Config
	Collector *collector.Collector
	Engine    topology.Engine
	Reporter  *report.Reporter
	Recorder  recorder.Recorder
}

// New creates a Pipeline.
func New(cfg *config.Config, col *collector.Collector, engine topology.Engine, rep *report.Reporter, rec recorder.Recorder) *Pipeline {
	return &Pipeline{Cfg: cfg, Collector: col, Engine: engine, Reporter: rep, Recorder: rec}
}

// Result holds everything one run produced.
type Result struct {
	RunID    string
	Table    *model.PriceTable
	Returns  *model.ReturnMatrix
	Windows  []model.Window
	Diagrams []*model.Diagram
	// FromFirst[dim][i] is the Wasserstein distance between window i's
	// diagram and window 0's; FromPrevious compares with window i-1.
	// Element 0 of both series is the zero self-comparison.
	FromFirst    map[int][]float64
	FromPrevious map[int][]float64
}

// Run executes the whole pipeline sequentially in chronological order.
func (p *Pipeline) Run() (*Result, error) {
	start, err := p.Cfg.Start()
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := p.Cfg.End()
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}

	res := &Result{RunID: uuid.NewString()}
	log.Printf("[INFO] run %s: %d tickers, %s..%s, window %d, maxdim %d",
		res.RunID, len(p.Cfg.Tickers), p.Cfg.StartDate, p.Cfg.EndDate,
		p.Cfg.WindowLength, p.Cfg.MaxDimension)

	res.Table, err = p.Collector.BuildTable(start, end)
	if err != nil {
		return nil, fmt.Errorf("build price table: %w", err)
	}
	log.Printf("[INFO] price table: %d trading days x %d tickers", res.Table.Rows(), res.Table.Cols())

	res.Returns, err = returns.Transform(res.Table, p.Cfg.MissingPolicy)
	if err != nil {
		return nil, fmt.Errorf("log returns: %w", err)
	}

	res.Windows, err = window.Segment(res.Returns, p.Cfg.WindowLength)
	if err != nil {
		return nil, fmt.Errorf("segment windows: %w", err)
	}
	log.Printf("[INFO] %d windows of length %d", len(res.Windows), p.Cfg.WindowLength)

	p.record(func() error {
		return p.Recorder.RecordRun(&recorder.RunRecord{
			ID:           res.RunID,
			CreatedAt:    time.Now(),
			Start:        start,
			End:          end,
			Tickers:      p.Cfg.Tickers,
			WindowLength: p.Cfg.WindowLength,
			MaxDimension: p.Cfg.MaxDimension,
			Source:       res.Table.Source,
		})
	})

	for i := range res.Windows {
		w := &res.Windows[i]
		dm, err := distance.Build(w)
		if err != nil {
			return nil, fmt.Errorf("distance matrix: %w", err)
		}
		intervals, err := p.Engine.Persistence(dm.D, p.Cfg.MaxDimension)
		if err != nil {
			return nil, fmt.Errorf("persistence, window %d: %w", w.Index, err)
		}
		diag := &model.Diagram{WindowIndex: w.Index, Start: w.Start, Intervals: intervals}
		res.Diagrams = append(res.Diagrams, diag)
		log.Printf("[INFO] window %d (%s): %d intervals", w.Index,
			w.Start.Format(config.DateFormat), len(intervals))

		p.record(func() error { return p.Recorder.RecordWindow(res.RunID, w) })
		p.record(func() error { return p.Recorder.RecordDiagram(res.RunID, diag) })
	}

	p.compareDiagrams(res)

	if p.Reporter != nil {
		if err := p.render(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// compareDiagrams fills both distance framings for every dimension up
// to the configured maximum.
func (p *Pipeline) compareDiagrams(res *Result) {
	res.FromFirst = make(map[int][]float64)
	res.FromPrevious = make(map[int][]float64)

	for dim := 0; dim <= p.Cfg.MaxDimension; dim++ {
		first := make([]float64, len(res.Diagrams))
		prev := make([]float64, len(res.Diagrams))
		for i, d := range res.Diagrams {
			if i == 0 {
				continue // self-comparison, both series start at 0
			}
			first[i] = topology.Wasserstein(res.Diagrams[0].Intervals, d.Intervals, dim)
			prev[i] = topology.Wasserstein(res.Diagrams[i-1].Intervals, d.Intervals, dim)
		}
		res.FromFirst[dim] = first
		res.FromPrevious[dim] = prev

		for i := range res.Diagrams {
			p.record(func() error {
				return p.Recorder.RecordDistance(res.RunID, &recorder.DistanceRecord{
					WindowIndex: i, Dimension: dim,
					Baseline: recorder.BaselineFirst, Value: res.FromFirst[dim][i],
				})
			})
			p.record(func() error {
				return p.Recorder.RecordDistance(res.RunID, &recorder.DistanceRecord{
					WindowIndex: i, Dimension: dim,
					Baseline: recorder.BaselinePrevious, Value: res.FromPrevious[dim][i],
				})
			})
		}
	}
}

// render writes the per-window diagrams, the distance series charts and
// the text summary.
func (p *Pipeline) render(res *Result) error {
	for _, d := range res.Diagrams {
		if _, err := p.Reporter.WriteDiagram(d, p.Cfg.MaxDimension); err != nil {
			return fmt.Errorf("diagram chart, window %d: %w", d.WindowIndex, err)
		}
	}

	dates := make([]time.Time, len(res.Windows))
	for i, w := range res.Windows {
		dates[i] = w.Start
	}
	// H0 is dominated by its essential bar; the series charts start at H1.
	for dim := 1; dim <= p.Cfg.MaxDimension; dim++ {
		if _, err := p.Reporter.WriteSeries(dim, recorder.BaselineFirst, dates, res.FromFirst[dim]); err != nil {
			return fmt.Errorf("series chart: %w", err)
		}
		if _, err := p.Reporter.WriteSeries(dim, recorder.BaselinePrevious, dates, res.FromPrevious[dim]); err != nil {
			return fmt.Errorf("series chart: %w", err)
		}
	}

	start, _ := p.Cfg.Start()
	end, _ := p.Cfg.End()
	path, err := p.Reporter.WriteSummary(&report.SummaryInfo{
		Tickers:      p.Cfg.Tickers,
		Start:        start,
		End:          end,
		Source:       res.Table.Source,
		WindowLength: p.Cfg.WindowLength,
		Windows:      res.Windows,
		Diagrams:     res.Diagrams,
		FromFirst:    res.FromFirst,
		FromPrevious: res.FromPrevious,
	})
	if err != nil {
		return err
	}
	log.Printf("[INFO] summary written: %s", path)
	return nil
}

// record runs a recorder call, logging failures without aborting the run.
func (p *Pipeline) record(fn func() error) {
	if p.Recorder == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("[ERROR] record: %v", err)
	}
}
