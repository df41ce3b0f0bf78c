package topology

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"TopoSentinel/internal/model"
)

// maxPoints bounds the clique enumeration; vertex sets are encoded as
// uint64 bitmasks.
const maxPoints = 64

// maxEngineDim bounds the homology dimension: the engine enumerates
// simplices one dimension higher, so maxDim d costs O(n^(d+2)) simplices.
const maxEngineDim = 3

// RipsEngine computes Vietoris-Rips persistent homology by reducing the
// boundary matrix of the clique filtration over Z/2.
type RipsEngine struct{}

// NewRipsEngine creates a Rips persistence engine.
func NewRipsEngine() *RipsEngine { return &RipsEngine{} }

// simplex is one cell of the clique filtration. Vertices are encoded in
// mask; filt is the maximum pairwise distance among them.
type simplex struct {
	mask uint64
	dim  int
	filt float64
}

// Persistence returns the persistence intervals of dimensions 0..maxDim
// for the Rips filtration of d. Zero-length intervals are dropped;
// classes that never die are reported with death = +Inf.
func (e *RipsEngine) Persistence(d mat.Symmetric, maxDim int) ([]model.Interval, error) {
	n := d.SymmetricDim()
	if n == 0 {
		return nil, fmt.Errorf("empty distance matrix")
	}
	if n > maxPoints {
		return nil, fmt.Errorf("%d points (limit %d): %w", n, maxPoints, ErrTooManyPoints)
	}
	if maxDim < 0 || maxDim > maxEngineDim {
		return nil, fmt.Errorf("maxDim %d (limit %d): %w", maxDim, maxEngineDim, ErrDimension)
	}

	simplices := buildFiltration(d, maxDim+1)

	// Faces must precede cofaces: a face never has a larger filtration
	// value, so sorting by (filt, dim) suffices; the mask tiebreak keeps
	// the order deterministic.
	sort.Slice(simplices, func(i, j int) bool {
		a, b := simplices[i], simplices[j]
		if a.filt != b.filt {
			return a.filt < b.filt
		}
		if a.dim != b.dim {
			return a.dim < b.dim
		}
		return a.mask < b.mask
	})

	index := make(map[uint64]int, len(simplices))
	for i, s := range simplices {
		index[s.mask] = i
	}

	m := len(simplices)
	cols := make([][]int, m)    // reduced boundary columns of negative simplices
	lowInv := make([]int, m)    // lowInv[i] = negative column whose low is i
	positive := make([]bool, m) // creators: empty reduced boundary
	for i := range lowInv {
		lowInv[i] = -1
	}

	var intervals []model.Interval
	for j, s := range simplices {
		if s.dim == 0 {
			positive[j] = true
			continue
		}
		col := boundary(s, index)
		for len(col) > 0 {
			low := col[len(col)-1]
			k := lowInv[low]
			if k < 0 {
				break
			}
			col = symDiff(col, cols[k])
		}
		if len(col) == 0 {
			positive[j] = true
			continue
		}
		low := col[len(col)-1]
		cols[j] = col
		lowInv[low] = j
		creator := simplices[low]
		if creator.dim <= maxDim && s.filt > creator.filt {
			intervals = append(intervals, model.Interval{
				Dimension: creator.dim,
				Birth:     creator.filt,
				Death:     s.filt,
			})
		}
	}

	// Unpaired creators are essential classes.
	for i, s := range simplices {
		if positive[i] && lowInv[i] < 0 && s.dim <= maxDim {
			intervals = append(intervals, model.Interval{
				Dimension: s.dim,
				Birth:     s.filt,
				Death:     math.Inf(1),
			})
		}
	}
	return intervals, nil
}

// buildFiltration enumerates all simplices of dimension 0..topDim with
// their clique filtration values.
func buildFiltration(d mat.Symmetric, topDim int) []simplex {
	n := d.SymmetricDim()
	var simplices []simplex

	verts := make([]int, 0, topDim+1)
	var enumerate func(next int, filt float64)
	enumerate = func(next int, filt float64) {
		if len(verts) > 0 {
			mask := uint64(0)
			for _, v := range verts {
				mask |= 1 << uint(v)
			}
			simplices = append(simplices, simplex{mask: mask, dim: len(verts) - 1, filt: filt})
		}
		if len(verts) == topDim+1 {
			return
		}
		for v := next; v < n; v++ {
			f := filt
			for _, u := range verts {
				if dv := d.At(u, v); dv > f {
					f = dv
				}
			}
			verts = append(verts, v)
			enumerate(v+1, f)
			verts = verts[:len(verts)-1]
		}
	}
	enumerate(0, 0)
	return simplices
}

// boundary returns the sorted filtration indices of the (dim-1)-faces.
func boundary(s simplex, index map[uint64]int) []int {
	faces := make([]int, 0, s.dim+1)
	for mask := s.mask; mask != 0; mask &= mask - 1 {
		bit := mask & -mask
		faces = append(faces, index[s.mask&^bit])
	}
	sort.Ints(faces)
	return faces
}

// symDiff returns the symmetric difference of two sorted index slices
// (column addition over Z/2).
func symDiff(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
