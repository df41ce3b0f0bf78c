package model

import (
	"math"
	"time"
)

// Interval is one persistence bar: a topological feature of the given
// homology dimension born at Birth and dying at Death as the distance
// threshold sweeps upward. Essential classes carry Death = +Inf.
type Interval struct {
	Dimension int
	Birth     float64
	Death     float64
}

// Essential reports whether the interval never dies.
func (iv Interval) Essential() bool { return math.IsInf(iv.Death, 1) }

// Persistence returns the bar length (Inf for essential classes).
func (iv Interval) Persistence() float64 { return iv.Death - iv.Birth }

// Diagram is the persistence diagram of one window. Immutable once
// produced by the homology engine.
type Diagram struct {
	WindowIndex int
	Start       time.Time
	Intervals   []Interval
}

// ByDimension returns the intervals of the given homology dimension,
// in their original order.
func (d *Diagram) ByDimension(dim int) []Interval {
	var out []Interval
	for _, iv := range d.Intervals {
		if iv.Dimension == dim {
			out = append(out, iv)
		}
	}
	return out
}
