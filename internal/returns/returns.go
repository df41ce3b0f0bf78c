// Package returns converts an aligned price table into daily log returns
// under an explicit missing-data policy.
package returns

import (
	"fmt"
	"log"
	"math"
	"time"

	"TopoSentinel/internal/config"
	"TopoSentinel/internal/model"
)

// Transform computes per-ticker log returns ln(P_t) - ln(P_{t-1}) for
// t = 1..N-1. Entries that are undefined (a missing or non-positive
// price on either side) are handled per the policy: fail aborts with
// the exact position, zero substitutes 0.0, drop removes the whole row.
func Transform(table *model.PriceTable, policy config.MissingPolicy) (*model.ReturnMatrix, error) {
	if table.Rows() < 2 {
		return nil, fmt.Errorf("need at least 2 price rows, got %d", table.Rows())
	}

	rm := &model.ReturnMatrix{
		Tickers: append([]string(nil), table.Tickers...),
	}
	dropped := 0
	for t := 1; t < table.Rows(); t++ {
		row := make([]float64, table.Cols())
		defined := true
		for j := range table.Tickers {
			prev, cur := table.Prices[t-1][j], table.Prices[t][j]
			if prev <= 0 || cur <= 0 {
				switch policy {
				case config.PolicyFail:
					return nil, &UndefinedReturnError{
						Date:   table.Dates[t],
						Ticker: table.Tickers[j],
						Prev:   prev,
						Cur:    cur,
					}
				case config.PolicyDrop:
					defined = false
				default: // PolicyZero, the reference behavior
					row[j] = 0
				}
				continue
			}
			row[j] = math.Log(cur) - math.Log(prev)
		}
		if !defined {
			dropped++
			continue
		}
		rm.Dates = append(rm.Dates, table.Dates[t])
		rm.Rows = append(rm.Rows, row)
	}
	if dropped > 0 {
		log.Printf("[WARN] dropped %d return rows with undefined entries", dropped)
	}
	if len(rm.Rows) == 0 {
		return nil, fmt.Errorf("all %d return rows dropped as undefined", dropped)
	}
	return rm, nil
}

// UndefinedReturnError pinpoints a log return that cannot be computed.
type UndefinedReturnError struct {
	Date   time.Time
	Ticker string
	Prev   float64
	Cur    float64
}

func (e *UndefinedReturnError) Error() string {
	return fmt.Sprintf("undefined log return for %s on %s (prices %.4f -> %.4f)",
		e.Ticker, e.Date.Format(config.DateFormat), e.Prev, e.Cur)
}
