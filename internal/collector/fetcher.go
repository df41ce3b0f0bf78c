package collector

import (
	"errors"
	"time"

	"TopoSentinel/internal/model"
)

// ErrNoData indicates a requested ticker has no price data in range.
var ErrNoData = errors.New("no price data in range")

// Fetcher defines the interface for fetching adjusted daily closes.
type Fetcher interface {
	FetchAdjustedCloses(symbol string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}
