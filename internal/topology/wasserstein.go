package topology

import (
	"math"
	"sort"

	"TopoSentinel/internal/model"
)

// Wasserstein returns the first Wasserstein distance between the
// dimension-dim intervals of two diagrams: the cheapest matching of bars
// to bars or to their diagonal projections, with Euclidean ground
// metric. Symmetric, non-negative and zero for identical diagrams.
//
// Essential intervals can only match essential intervals; they pair in
// birth order at cost |Δbirth|, and diagrams with different essential
// counts at this dimension are incomparable (+Inf).
func Wasserstein(a, b []model.Interval, dim int) float64 {
	aFin, aEss := split(a, dim)
	bFin, bEss := split(b, dim)

	if len(aEss) != len(bEss) {
		return math.Inf(1)
	}
	total := 0.0
	for i := range aEss {
		total += math.Abs(aEss[i].Birth - bEss[i].Birth)
	}

	na, nb := len(aFin), len(bFin)
	if na+nb == 0 {
		return total
	}

	// Square assignment problem: each bar of one diagram matches a bar
	// of the other or slides to the diagonal.
	m := na + nb
	cost := make([][]float64, m)
	for i := 0; i < m; i++ {
		cost[i] = make([]float64, m)
		for j := 0; j < m; j++ {
			switch {
			case i < na && j < nb:
				cost[i][j] = math.Hypot(aFin[i].Birth-bFin[j].Birth, aFin[i].Death-bFin[j].Death)
			case i < na:
				cost[i][j] = diagonalCost(aFin[i])
			case j < nb:
				cost[i][j] = diagonalCost(bFin[j])
			}
		}
	}
	return total + hungarian(cost)
}

// split returns the finite and essential intervals of one dimension,
// essential ones sorted by birth.
func split(intervals []model.Interval, dim int) (finite, essential []model.Interval) {
	for _, iv := range intervals {
		if iv.Dimension != dim {
			continue
		}
		if iv.Essential() {
			essential = append(essential, iv)
		} else {
			finite = append(finite, iv)
		}
	}
	sort.Slice(essential, func(i, j int) bool { return essential[i].Birth < essential[j].Birth })
	return finite, essential
}

// diagonalCost is the Euclidean distance from a bar to the diagonal.
func diagonalCost(iv model.Interval) float64 {
	return (iv.Death - iv.Birth) / math.Sqrt2
}

// hungarian solves the square min-cost assignment problem in O(n^3)
// using shortest augmenting paths with dual potentials.
func hungarian(cost [][]float64) float64 {
	n := len(cost)
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	match := make([]int, n+1) // match[j] = row assigned to column j, 1-based
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	total := 0.0
	for j := 1; j <= n; j++ {
		if match[j] > 0 {
			total += cost[match[j]-1][j-1]
		}
	}
	return total
}
