// Package window partitions a return matrix into fixed-length
// chronological chunks.
package window

import (
	"errors"

	"TopoSentinel/internal/model"
)

// Segment splits the return rows into consecutive groups of length w.
// Row i belongs to window i/w, so the number of windows is ceil(N/w) and
// the trailing window may hold fewer than w rows. Windows reference the
// underlying rows; callers must not mutate them.
func Segment(rm *model.ReturnMatrix, w int) ([]model.Window, error) {
	if w < 1 {
		return nil, errors.New("window length must be positive")
	}
	if len(rm.Rows) == 0 {
		return nil, errors.New("empty return matrix")
	}

	n := len(rm.Rows)
	k := (n + w - 1) / w
	windows := make([]model.Window, 0, k)
	for i := 0; i < k; i++ {
		lo := i * w
		hi := lo + w
		if hi > n {
			hi = n
		}
		windows = append(windows, model.Window{
			Index:   i,
			Start:   rm.Dates[lo],
			End:     rm.Dates[hi-1],
			Tickers: rm.Tickers,
			Rows:    rm.Rows[lo:hi],
		})
	}
	return windows, nil
}
