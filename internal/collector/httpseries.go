package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"RiskDial/internal/model"
)

// HTTPProvider reads a JSON series from a REST endpoint. It serves the
// external connectors (ETF flows, stablecoin supply, funding, sentiment)
// that publish [{timestamp, value}] documents.
type HTTPProvider struct {
	Client *http.Client
}

// NewHTTPProvider creates a provider with optional proxy support.
func NewHTTPProvider(proxyURL string) *HTTPProvider {
	return &HTTPProvider{Client: NewHTTPClient(proxyURL, 30*time.Second)}
}

func (p *HTTPProvider) Name() string { return "http" }

// seriesPoint is the expected JSON shape of one observation. Close is
// accepted for bar-shaped endpoints.
type seriesPoint struct {
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value"`
	Close     *float64 `json:"close"`
}

func (p *HTTPProvider) FetchSeries(ctx context.Context, spec SourceSpec) (model.Series, error) {
	if spec.URL == "" {
		return model.Series{}, fmt.Errorf("http source %q: url is required", spec.Name)
	}
	endpoint, err := url.Parse(spec.URL)
	if err != nil {
		return model.Series{}, fmt.Errorf("http source %q: %w", spec.Name, err)
	}
	q := endpoint.Query()
	if spec.Symbol != "" {
		q.Set("symbol", spec.Symbol)
	}
	if spec.Days > 0 {
		q.Set("limit", fmt.Sprint(spec.Days))
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.Series{}, err
	}
	if spec.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+spec.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return model.Series{}, fmt.Errorf("fetch series: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Series{}, fmt.Errorf("fetch series: status %d, body: %s", resp.StatusCode, string(body))
	}
	points, err := decodePoints(resp.Body)
	if err != nil {
		return model.Series{}, err
	}
	return model.Series{Key: spec.Name, Source: endpoint.Host, Points: points}, nil
}

func decodePoints(r io.Reader) ([]model.Point, error) {
	var raw []seriesPoint
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}
	points := make([]model.Point, 0, len(raw))
	for _, sp := range raw {
		v := sp.Value
		if v == nil {
			v = sp.Close
		}
		if v == nil {
			continue
		}
		points = append(points, model.Point{Time: time.Unix(sp.Timestamp, 0).UTC(), Value: *v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}
