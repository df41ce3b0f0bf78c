package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"TopoSentinel/internal/model"
)

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2007, 1, 3, 0, 0, 0, 0, time.UTC)
	windows := []model.Window{
		{Index: 0, Start: start, End: start.AddDate(0, 0, 28), Rows: make([][]float64, 21)},
		{Index: 1, Start: start.AddDate(0, 0, 30), End: start.AddDate(0, 0, 58), Rows: make([][]float64, 21)},
	}
	diagrams := []*model.Diagram{
		{WindowIndex: 0, Start: windows[0].Start, Intervals: []model.Interval{
			{Dimension: 0, Birth: 0, Death: 0.9},
			{Dimension: 0, Birth: 0, Death: math.Inf(1)},
			{Dimension: 1, Birth: 1.1, Death: 1.3},
		}},
		{WindowIndex: 1, Start: windows[1].Start, Intervals: []model.Interval{
			{Dimension: 0, Birth: 0, Death: math.Inf(1)},
		}},
	}
	info := &SummaryInfo{
		Tickers:      []string{"JPM", "BAC"},
		Start:        start,
		End:          start.AddDate(2, 0, 0),
		Source:       "mock",
		WindowLength: 21,
		Windows:      windows,
		Diagrams:     diagrams,
		FromFirst:    map[int][]float64{1: {0, 0.42}},
		FromPrevious: map[int][]float64{1: {0, 0.42}},
	}

	out := FormatRunSummary(info)
	for _, want := range []string{
		"JPM, BAC",
		"2007-01-03",
		"Windows:       2",
		"H1=1",
		"H1 peak 0.4200 at window 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestArgmax_IgnoresNonFinite(t *testing.T) {
	idx, v := argmax([]float64{0, math.Inf(1), 0.3, math.NaN(), 0.2})
	if idx != 2 || v != 0.3 {
		t.Errorf("argmax = (%d, %v), want (2, 0.3)", idx, v)
	}
	if idx, _ := argmax([]float64{math.Inf(1), math.NaN()}); idx != -1 {
		t.Errorf("all non-finite should give -1, got %d", idx)
	}
}
