// Package topology computes persistent homology of dissimilarity
// matrices and optimal-matching distances between the resulting
// persistence diagrams.
package topology

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"TopoSentinel/internal/model"
)

// ErrTooManyPoints indicates the input exceeds the clique-enumeration
// limit of the Rips backend.
var ErrTooManyPoints = errors.New("too many points for clique enumeration")

// ErrDimension indicates an unsupported maximum homology dimension.
var ErrDimension = errors.New("unsupported homology dimension")

// Engine produces a persistence diagram from a dissimilarity matrix:
// one interval per topological feature of dimension 0..maxDim, with the
// birth and death distance thresholds at which the feature appears and
// disappears. Essential features carry death = +Inf.
type Engine interface {
	Persistence(d mat.Symmetric, maxDim int) ([]model.Interval, error)
}
