package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"RiskDial/internal/model"
)

// Result holds the series that were fetched and the reasons the others
// were not.
type Result struct {
	Inputs      map[string]model.Series
	Unavailable map[string]string
}

// Collector fetches every configured source through its guard.
type Collector struct {
	providers map[string]Provider
	settings  GuardSettings

	mu     sync.Mutex
	guards map[string]*Guard
}

// NewCollector creates a collector over the given providers, keyed by name.
func NewCollector(settings GuardSettings, providers ...Provider) *Collector {
	c := &Collector{
		providers: make(map[string]Provider, len(providers)),
		settings:  settings,
		guards:    make(map[string]*Guard),
	}
	for _, p := range providers {
		c.providers[p.Name()] = p
	}
	return c
}

// guard returns the long-lived guard for a source so its breaker state
// survives across runs.
func (c *Collector) guard(spec SourceSpec) (*Guard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.guards[spec.Name]; ok {
		return g, nil
	}
	p, ok := c.providers[spec.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q for %s", model.ErrSourceUnavailable, spec.Provider, spec.Name)
	}
	g := NewGuard(spec.Name, p, c.settings.forSpec(spec))
	c.guards[spec.Name] = g
	return g, nil
}

// Collect fetches all sources concurrently. It never fails as a whole: a
// source that errors or times out is left out of Inputs and listed in
// Unavailable.
func (c *Collector) Collect(ctx context.Context, specs []SourceSpec) Result {
	res := Result{
		Inputs:      make(map[string]model.Series, len(specs)),
		Unavailable: make(map[string]string),
	}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, spec := range specs {
		wg.Add(1)
		go func(spec SourceSpec) {
			defer wg.Done()
			series, err := c.fetch(ctx, spec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("source", spec.Name).Str("provider", spec.Provider).Msg("source unavailable")
				res.Unavailable[spec.Name] = err.Error()
				return
			}
			log.Debug().Str("source", spec.Name).Int("points", series.Len()).Msg("source fetched")
			res.Inputs[spec.Name] = series
		}(spec)
	}
	wg.Wait()
	return res
}

func (c *Collector) fetch(ctx context.Context, spec SourceSpec) (model.Series, error) {
	g, err := c.guard(spec)
	if err != nil {
		return model.Series{}, err
	}
	return g.FetchSeries(ctx, spec)
}
