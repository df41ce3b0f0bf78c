package model

import "time"

// PricePoint is a single adjusted daily close for one ticker.
type PricePoint struct {
	Date     time.Time
	AdjClose float64
}

// PriceTable holds adjusted closes for a fixed ticker set on a common
// set of trading days, dates ascending.
type PriceTable struct {
	Tickers []string
	Dates   []time.Time
	// Prices[i][j] is the adjusted close of Tickers[j] on Dates[i].
	Prices [][]float64

	FetchedAt time.Time
	Source    string
}

// Rows returns the number of trading days in the table.
func (t *PriceTable) Rows() int { return len(t.Dates) }

// Cols returns the number of tickers in the table.
func (t *PriceTable) Cols() int { return len(t.Tickers) }
