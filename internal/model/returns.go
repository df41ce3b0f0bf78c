package model

import "time"

// ReturnMatrix holds daily log returns, rows = trading days (one fewer
// than the price table), columns = tickers. After cleansing there are no
// undefined entries.
type ReturnMatrix struct {
	Tickers []string
	// Dates[i] is the date of the later price in the i-th return.
	Dates []time.Time
	Rows  [][]float64
}

// Window is a contiguous, non-overlapping slice of return rows.
// Windows are chronological; the last one may hold fewer rows than the
// configured length.
type Window struct {
	Index   int
	Start   time.Time
	End     time.Time
	Tickers []string
	Rows    [][]float64
}

// Len returns the number of return rows in the window.
func (w *Window) Len() int { return len(w.Rows) }
