package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"TopoSentinel/internal/model"
)

// StooqFetcher implements Fetcher using the Stooq daily CSV endpoint.
// Stooq closes are split-adjusted, which is the closest the service
// offers to an adjusted close.
type StooqFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewStooqFetcher creates a new fetcher with optional proxy support.
func NewStooqFetcher(proxyURL string) *StooqFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &StooqFetcher{
		BaseURL: "https://stooq.com",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

// stooqSymbol maps a plain US ticker to Stooq's convention (aapl.us).
func stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if !strings.Contains(s, ".") {
		s += ".us"
	}
	return s
}

// FetchAdjustedCloses downloads the daily CSV for symbol in [start, end].
func (f *StooqFetcher) FetchAdjustedCloses(symbol string, start, end time.Time) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		f.BaseURL, url.QueryEscape(stooqSymbol(symbol)),
		start.Format("20060102"), end.Format("20060102"))

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stooq: status %d, body: %s", resp.StatusCode, string(body))
	}

	return parseStooqCSV(resp.Body, symbol)
}

// parseStooqCSV decodes the Date,Open,High,Low,Close[,Volume] daily CSV.
func parseStooqCSV(r io.Reader, symbol string) ([]model.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // volume column is absent for indices

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("stooq csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("stooq %s: %w", symbol, ErrNoData)
	}

	header := records[0]
	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "Close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("stooq %s: unexpected header %v", symbol, header)
	}

	points := make([]model.PricePoint, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= closeCol || len(rec) <= dateCol {
			continue
		}
		d, err := time.Parse("2006-01-02", rec[dateCol])
		if err != nil {
			continue
		}
		c, err := strconv.ParseFloat(rec[closeCol], 64)
		if err != nil || c == 0 {
			continue
		}
		points = append(points, model.PricePoint{Date: d, AdjClose: c})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("stooq %s: %w", symbol, ErrNoData)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
