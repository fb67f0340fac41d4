package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"RiskDial/internal/model"
)

// SourceSpec configures one input series and where it comes from.
type SourceSpec struct {
	Name           string  `yaml:"name"`
	Provider       string  `yaml:"provider"`
	Symbol         string  `yaml:"symbol"`
	Field          string  `yaml:"field"`
	URL            string  `yaml:"url"`
	APIKey         string  `yaml:"api_key"`
	Path           string  `yaml:"path"`
	Days           int     `yaml:"days"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Retries        int     `yaml:"retries"`
	RatePerMinute  float64 `yaml:"rate_per_minute"`
}

// FieldSpot asks a price provider for the latest traded price instead of
// daily closes.
const FieldSpot = "spot"

// Provider fetches one raw series for a source.
type Provider interface {
	Name() string
	FetchSeries(ctx context.Context, spec SourceSpec) (model.Series, error)
}

// NewHTTPClient builds a client with an optional proxy.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
