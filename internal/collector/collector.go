package collector

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"TopoSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Data, when set, is returned verbatim per symbol.
	Data map[string][]model.PricePoint
	// BasePrice seeds the synthetic series when Data is nil.
	BasePrice float64
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchAdjustedCloses returns fixed data when present, otherwise a
// deterministic synthetic walk over business days in [start, end].
func (m *MockFetcher) FetchAdjustedCloses(symbol string, start, end time.Time) ([]model.PricePoint, error) {
	if m.Data != nil {
		pts, ok := m.Data[symbol]
		if !ok || len(pts) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		return pts, nil
	}

	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	// Phase the series per symbol so columns are not perfectly correlated.
	phase := 0.0
	for _, r := range symbol {
		phase += float64(r)
	}
	phase = math.Mod(phase, 2*math.Pi)

	var points []model.PricePoint
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := base * (1 + 0.05*math.Sin(2*math.Pi*float64(i)/40+phase) + 0.001*float64(i))
		points = append(points, model.PricePoint{Date: d, AdjClose: p})
		i++
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return points, nil
}

// Collector fetches all tickers and aligns them into a PriceTable.
type Collector struct {
	Fetcher Fetcher
	Tickers []string
	Retries int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, tickers []string, retries int) *Collector {
	if retries < 1 {
		retries = 1
	}
	return &Collector{Fetcher: fetcher, Tickers: tickers, Retries: retries}
}

// fetchWithRetry retries transient fetch failures with doubling backoff.
func (c *Collector) fetchWithRetry(symbol string, start, end time.Time) ([]model.PricePoint, error) {
	delay := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= c.Retries; attempt++ {
		points, err := c.Fetcher.FetchAdjustedCloses(symbol, start, end)
		if err == nil {
			return points, nil
		}
		lastErr = err
		if attempt < c.Retries {
			log.Printf("[WARN] fetch %s attempt %d/%d: %v, retrying in %v",
				symbol, attempt, c.Retries, err, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return nil, lastErr
}

// BuildTable fetches every ticker over [start, end] and restricts the
// result to trading days present for all of them. A ticker with no data
// in range fails the build with ErrNoData.
func (c *Collector) BuildTable(start, end time.Time) (*model.PriceTable, error) {
	if len(c.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}

	series := make(map[string]map[string]float64, len(c.Tickers))
	for _, ticker := range c.Tickers {
		points, err := c.fetchWithRetry(ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ticker, err)
		}
		if len(points) == 0 {
			return nil, fmt.Errorf("fetch %s: %w", ticker, ErrNoData)
		}
		byDate := make(map[string]float64, len(points))
		for _, p := range points {
			byDate[p.Date.Format("2006-01-02")] = p.AdjClose
		}
		series[ticker] = byDate
		log.Printf("[INFO] fetched %s: %d trading days", ticker, len(byDate))
	}

	// Intersect trading days across tickers.
	counts := make(map[string]int)
	for _, byDate := range series {
		for day := range byDate {
			counts[day]++
		}
	}
	var common []string
	for day, n := range counts {
		if n == len(c.Tickers) {
			common = append(common, day)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("no trading day shared by all tickers: %w", ErrNoData)
	}
	sort.Strings(common)
	if dropped := len(counts) - len(common); dropped > 0 {
		log.Printf("[INFO] aligned on %d common trading days (%d partial days dropped)",
			len(common), dropped)
	}

	table := &model.PriceTable{
		Tickers:   append([]string(nil), c.Tickers...),
		Dates:     make([]time.Time, len(common)),
		Prices:    make([][]float64, len(common)),
		FetchedAt: time.Now(),
		Source:    c.Fetcher.Name(),
	}
	for i, day := range common {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse trading day %q: %w", day, err)
		}
		table.Dates[i] = d
		row := make([]float64, len(c.Tickers))
		for j, ticker := range c.Tickers {
			row[j] = series[ticker][day]
		}
		table.Prices[i] = row
	}
	return table, nil
}
