package topology

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"TopoSentinel/internal/model"
)

func symFromDense(n int, data []float64) *mat.SymDense {
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, data[i*n+j])
		}
	}
	return s
}

func intervalsOfDim(intervals []model.Interval, dim int) []model.Interval {
	var out []model.Interval
	for _, iv := range intervals {
		if iv.Dimension == dim {
			out = append(out, iv)
		}
	}
	return out
}

func TestPersistence_TwoPoints(t *testing.T) {
	d := symFromDense(2, []float64{
		0, 0.7,
		0.7, 0,
	})
	intervals, err := NewRipsEngine().Persistence(d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h0 := intervalsOfDim(intervals, 0)
	if len(h0) != 2 {
		t.Fatalf("expected 2 H0 intervals, got %d (%v)", len(h0), h0)
	}
	var finite, essential int
	for _, iv := range h0 {
		if iv.Birth != 0 {
			t.Errorf("H0 birth must be 0, got %v", iv.Birth)
		}
		if iv.Essential() {
			essential++
		} else {
			finite++
			if math.Abs(iv.Death-0.7) > 1e-12 {
				t.Errorf("component must merge at 0.7, got %v", iv.Death)
			}
		}
	}
	if finite != 1 || essential != 1 {
		t.Errorf("expected 1 finite + 1 essential H0 bar, got %d + %d", finite, essential)
	}
	if h1 := intervalsOfDim(intervals, 1); len(h1) != 0 {
		t.Errorf("two points have no H1, got %v", h1)
	}
}

func TestPersistence_SquareCycle(t *testing.T) {
	// Unit square: side 1, diagonal sqrt(2). One loop born when the
	// last side edge arrives, filled when the diagonals complete the
	// triangles.
	s := math.Sqrt2
	d := symFromDense(4, []float64{
		0, 1, s, 1,
		1, 0, 1, s,
		s, 1, 0, 1,
		1, s, 1, 0,
	})
	intervals, err := NewRipsEngine().Persistence(d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h0 := intervalsOfDim(intervals, 0)
	var essential int
	for _, iv := range h0 {
		if iv.Essential() {
			essential++
			continue
		}
		if math.Abs(iv.Death-1) > 1e-12 {
			t.Errorf("components merge along side edges at 1, got death %v", iv.Death)
		}
	}
	if len(h0) != 4 || essential != 1 {
		t.Fatalf("expected 3 finite + 1 essential H0 bars, got %v", h0)
	}

	h1 := intervalsOfDim(intervals, 1)
	if len(h1) != 1 {
		t.Fatalf("expected exactly 1 H1 bar, got %v", h1)
	}
	if math.Abs(h1[0].Birth-1) > 1e-12 || math.Abs(h1[0].Death-s) > 1e-12 {
		t.Errorf("expected H1 bar [1, sqrt2], got [%v, %v]", h1[0].Birth, h1[0].Death)
	}
}

func TestPersistence_MaxDimZero(t *testing.T) {
	s := math.Sqrt2
	d := symFromDense(4, []float64{
		0, 1, s, 1,
		1, 0, 1, s,
		s, 1, 0, 1,
		1, s, 1, 0,
	})
	intervals, err := NewRipsEngine().Persistence(d, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, iv := range intervals {
		if iv.Dimension != 0 {
			t.Errorf("maxDim=0 must only report H0, got %v", iv)
		}
	}
}

func TestPersistence_ZeroBarsDropped(t *testing.T) {
	// Equilateral triangle: all edges arrive together; the cycle they
	// create dies instantly and must not be reported.
	d := symFromDense(3, []float64{
		0, 1, 1,
		1, 0, 1,
		1, 1, 0,
	})
	intervals, err := NewRipsEngine().Persistence(d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, iv := range intervals {
		if !iv.Essential() && iv.Persistence() <= 0 {
			t.Errorf("zero-persistence bar leaked: %v", iv)
		}
	}
	if h1 := intervalsOfDim(intervals, 1); len(h1) != 0 {
		t.Errorf("triangle has no persistent H1, got %v", h1)
	}
}

func TestPersistence_Deterministic(t *testing.T) {
	s := math.Sqrt2
	d := symFromDense(4, []float64{
		0, 1, s, 1,
		1, 0, 1, s,
		s, 1, 0, 1,
		1, s, 1, 0,
	})
	e := NewRipsEngine()
	a, err := e.Persistence(d, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Persistence(d, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("repeat runs differ: %d vs %d intervals", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("interval %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPersistence_Errors(t *testing.T) {
	d := symFromDense(2, []float64{0, 1, 1, 0})
	if _, err := NewRipsEngine().Persistence(d, 4); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension for maxDim=4, got %v", err)
	}
	if _, err := NewRipsEngine().Persistence(mat.NewSymDense(1, nil), 1); err != nil {
		t.Errorf("single point should be fine, got %v", err)
	}
}
