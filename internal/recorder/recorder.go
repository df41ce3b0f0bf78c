package recorder

import (
	"time"

	"TopoSentinel/internal/model"
)

// Baseline names the comparison framing of a diagram-distance value.
const (
	BaselineFirst    = "first"    // distance from window 0
	BaselinePrevious = "previous" // distance from the preceding window
)

// RunRecord identifies one pipeline execution.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	Start        time.Time
	End          time.Time
	Tickers      []string
	WindowLength int
	MaxDimension int
	Source       string
}

// DistanceRecord is one point of a diagram-distance series.
type DistanceRecord struct {
	WindowIndex int
	Dimension   int
	Baseline    string
	Value       float64
}

// Recorder persists run results for later analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordWindow(runID string, w *model.Window) error
	RecordDiagram(runID string, d *model.Diagram) error
	RecordDistance(runID string, rec *DistanceRecord) error
	Close() error
}
