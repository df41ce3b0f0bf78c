// Package distance maps a window of log returns to a correlation-based
// dissimilarity matrix d = sqrt(2(1-corr)).
package distance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"TopoSentinel/internal/model"
)

// ErrInsufficientRows indicates a window too short for correlation.
var ErrInsufficientRows = errors.New("window has fewer than 2 rows")

// ErrCorrelationDomain indicates a correlation outside [-1,1] or an
// undefined one (constant column), beyond float rounding tolerance.
var ErrCorrelationDomain = errors.New("correlation outside valid domain")

// negTolerance absorbs float rounding: 1-c values in [-negTolerance, 0)
// clamp to 0 instead of failing.
const negTolerance = 1e-9

// Matrix is the dissimilarity matrix of one window: symmetric, zero
// diagonal, entries in [0,2].
type Matrix struct {
	WindowIndex int
	Tickers     []string
	D           *mat.SymDense
}

// Dim returns the number of tickers.
func (m *Matrix) Dim() int { return m.D.SymmetricDim() }

// Build computes the Pearson correlation matrix over the window's
// columns and maps it elementwise to sqrt(2(1-c)). Deterministic: the
// same window always yields a bit-identical result.
func Build(w *model.Window) (*Matrix, error) {
	if w.Len() < 2 {
		return nil, fmt.Errorf("window %d (%d rows): %w", w.Index, w.Len(), ErrInsufficientRows)
	}

	rows, cols := w.Len(), len(w.Tickers)
	data := make([]float64, 0, rows*cols)
	for _, row := range w.Rows {
		data = append(data, row...)
	}
	x := mat.NewDense(rows, cols, data)

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, x, nil)

	d := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			c := corr.At(i, j)
			if math.IsNaN(c) || c < -1-negTolerance || c > 1+negTolerance {
				return nil, fmt.Errorf("window %d, %s/%s: correlation %v: %w",
					w.Index, w.Tickers[i], w.Tickers[j], c, ErrCorrelationDomain)
			}
			r := 2 * (1 - c)
			if r < 0 {
				r = 0 // rounding noise from c slightly above 1
			}
			d.SetSym(i, j, math.Sqrt(r))
		}
	}

	return &Matrix{
		WindowIndex: w.Index,
		Tickers:     w.Tickers,
		D:           d,
	}, nil
}
