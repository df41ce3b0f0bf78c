package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TopoSentinel/internal/model"
)

// SummaryInfo carries everything the text summary describes.
type SummaryInfo struct {
	Tickers      []string
	Start        time.Time
	End          time.Time
	Source       string
	WindowLength int
	Windows      []model.Window
	Diagrams     []*model.Diagram
	FromFirst    map[int][]float64
	FromPrevious map[int][]float64
}

// FormatRunSummary formats a run into a readable text report.
func FormatRunSummary(info *SummaryInfo) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("TopoSentinel run | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Tickers:       %s\n", strings.Join(info.Tickers, ", ")))
	b.WriteString(fmt.Sprintf("Range:         %s .. %s (source: %s)\n",
		info.Start.Format("2006-01-02"), info.End.Format("2006-01-02"), info.Source))
	b.WriteString(fmt.Sprintf("Window length: %d trading days\n", info.WindowLength))
	b.WriteString(fmt.Sprintf("Windows:       %d\n\n", len(info.Windows)))

	b.WriteString("Per-window features:\n")
	for i, d := range info.Diagrams {
		w := info.Windows[i]
		counts := make(map[int]int)
		for _, iv := range d.Intervals {
			counts[iv.Dimension]++
		}
		var parts []string
		for dim := 0; dim <= maxDimIn(counts); dim++ {
			parts = append(parts, fmt.Sprintf("H%d=%d", dim, counts[dim]))
		}
		b.WriteString(fmt.Sprintf("  window %3d | %s (%2d rows) | %s\n",
			w.Index, w.Start.Format("2006-01-02"), w.Len(), strings.Join(parts, " ")))
	}

	for _, baseline := range []string{"first", "previous"} {
		series := info.FromFirst
		if baseline == "previous" {
			series = info.FromPrevious
		}
		if len(series) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\nDistance vs %s window:\n", baseline))
		for dim := 0; dim <= 3; dim++ {
			values, ok := series[dim]
			if !ok {
				continue
			}
			peakIdx, peak := argmax(values)
			if peakIdx < 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("  H%d peak %.4f at window %d (%s)\n",
				dim, peak, peakIdx, info.Windows[peakIdx].Start.Format("2006-01-02")))
		}
	}

	return b.String()
}

// WriteSummary writes the run summary next to the charts.
func (r *Reporter) WriteSummary(info *SummaryInfo) (string, error) {
	path := filepath.Join(r.OutDir, "summary.txt")
	if err := os.WriteFile(path, []byte(FormatRunSummary(info)), 0644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

func maxDimIn(counts map[int]int) int {
	max := 0
	for dim := range counts {
		if dim > max {
			max = dim
		}
	}
	return max
}

// argmax ignores non-finite values; returns -1 when nothing is finite.
func argmax(values []float64) (int, float64) {
	idx, best := -1, math.Inf(-1)
	for i, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		if v > best {
			idx, best = i, v
		}
	}
	return idx, best
}
