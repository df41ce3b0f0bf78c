package recorder

import "TopoSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error                    { return nil }
func (n *NoopRecorder) RecordWindow(_ string, _ *model.Window) error    { return nil }
func (n *NoopRecorder) RecordDiagram(_ string, _ *model.Diagram) error  { return nil }
func (n *NoopRecorder) RecordDistance(_ string, _ *DistanceRecord) error { return nil }
func (n *NoopRecorder) Close() error                                    { return nil }
