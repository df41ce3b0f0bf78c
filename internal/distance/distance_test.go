package distance

import (
	"errors"
	"math"
	"testing"
	"time"

	"TopoSentinel/internal/model"
)

func testWindow(tickers []string, rows [][]float64) *model.Window {
	return &model.Window{
		Index:   0,
		Start:   time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2020, 1, 30, 0, 0, 0, 0, time.UTC),
		Tickers: tickers,
		Rows:    rows,
	}
}

// Three columns engineered for exact correlations: b = 2a (corr +1),
// c = -a (corr -1).
func correlatedWindow() *model.Window {
	a := []float64{0.011, -0.020, 0.034, 0.002, -0.015, 0.008}
	rows := make([][]float64, len(a))
	for i, v := range a {
		rows[i] = []float64{v, 2 * v, -v}
	}
	return testWindow([]string{"A", "B", "C"}, rows)
}

func TestBuild_ExactCorrelations(t *testing.T) {
	m, err := Build(correlatedWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.D.At(0, 1); math.Abs(got) > 1e-9 {
		t.Errorf("corr=+1 must map to distance 0, got %v", got)
	}
	if got := m.D.At(0, 2); math.Abs(got-2) > 1e-9 {
		t.Errorf("corr=-1 must map to distance 2, got %v", got)
	}
	if got := m.D.At(1, 2); math.Abs(got-2) > 1e-9 {
		t.Errorf("corr=-1 must map to distance 2, got %v", got)
	}
}

func TestBuild_MatrixProperties(t *testing.T) {
	rows := [][]float64{
		{0.012, -0.008, 0.031, -0.002},
		{-0.004, 0.017, -0.012, 0.009},
		{0.021, 0.003, 0.008, -0.016},
		{-0.013, -0.011, 0.004, 0.022},
		{0.006, 0.014, -0.019, 0.001},
	}
	m, err := Build(testWindow([]string{"A", "B", "C", "D"}, rows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := m.Dim()
	if n != 4 {
		t.Fatalf("expected 4x4 matrix, got %d", n)
	}
	for i := 0; i < n; i++ {
		if d := m.D.At(i, i); d != 0 {
			t.Errorf("diagonal [%d][%d] = %v, want 0", i, i, d)
		}
		for j := 0; j < n; j++ {
			d := m.D.At(i, j)
			if d != m.D.At(j, i) {
				t.Errorf("asymmetric at [%d][%d]", i, j)
			}
			if d < 0 || d > 2 {
				t.Errorf("[%d][%d] = %v outside [0,2]", i, j, d)
			}
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	w := correlatedWindow()
	m1, err := Build(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := Build(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := m1.Dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if m1.D.At(i, j) != m2.D.At(i, j) {
				t.Fatalf("repeat build not bit-identical at [%d][%d]", i, j)
			}
		}
	}
}

func TestBuild_InsufficientRows(t *testing.T) {
	w := testWindow([]string{"A", "B"}, [][]float64{{0.01, 0.02}})
	_, err := Build(w)
	if !errors.Is(err, ErrInsufficientRows) {
		t.Fatalf("expected ErrInsufficientRows, got %v", err)
	}
}

func TestBuild_ConstantColumn(t *testing.T) {
	// A constant column has zero variance: correlation is undefined and
	// must be flagged, not emitted as NaN.
	rows := [][]float64{
		{0.01, 0},
		{-0.02, 0},
		{0.03, 0},
	}
	_, err := Build(testWindow([]string{"A", "B"}, rows))
	if !errors.Is(err, ErrCorrelationDomain) {
		t.Fatalf("expected ErrCorrelationDomain, got %v", err)
	}
}
