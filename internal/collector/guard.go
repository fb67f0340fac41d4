package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"RiskDial/internal/model"
)

// GuardSettings bound every fetch of a source.
type GuardSettings struct {
	Timeout          time.Duration
	Retries          int
	RatePerMinute    float64
	FailureThreshold uint32
	OpenTimeout      time.Duration
	InitialInterval  time.Duration
}

// DefaultGuardSettings are used for sources that do not override them.
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{
		Timeout:          20 * time.Second,
		Retries:          3,
		RatePerMinute:    30,
		FailureThreshold: 5,
		OpenTimeout:      10 * time.Minute,
		InitialInterval:  500 * time.Millisecond,
	}
}

// forSpec applies the per-source overrides.
func (s GuardSettings) forSpec(spec SourceSpec) GuardSettings {
	if spec.TimeoutSeconds > 0 {
		s.Timeout = time.Duration(spec.TimeoutSeconds) * time.Second
	}
	if spec.Retries > 0 {
		s.Retries = spec.Retries
	}
	if spec.RatePerMinute > 0 {
		s.RatePerMinute = spec.RatePerMinute
	}
	return s
}

// Guard wraps a provider for one source with a circuit breaker, a rate
// limiter, bounded exponential retry and a hard timeout.
type Guard struct {
	provider Provider
	settings GuardSettings
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
}

// NewGuard creates a guard named after the source it protects.
func NewGuard(name string, p Provider, s GuardSettings) *Guard {
	st := gobreaker.Settings{Name: name, Timeout: s.OpenTimeout}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= s.FailureThreshold
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	}
	limit := rate.Inf
	if s.RatePerMinute > 0 {
		limit = rate.Every(time.Duration(float64(time.Minute) / s.RatePerMinute))
	}
	return &Guard{
		provider: p,
		settings: s,
		breaker:  gobreaker.NewCircuitBreaker(st),
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// FetchSeries fetches through the guard. Every failure wraps
// model.ErrSourceUnavailable.
func (g *Guard) FetchSeries(ctx context.Context, spec SourceSpec) (model.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, g.settings.Timeout)
	defer cancel()

	var series model.Series
	op := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		out, err := g.breaker.Execute(func() (interface{}, error) {
			return g.provider.FetchSeries(ctx, spec)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		series = out.(model.Series)
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.settings.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(g.settings.Retries)), ctx)
	notify := func(err error, wait time.Duration) {
		log.Debug().Err(err).Str("source", spec.Name).Dur("wait", wait).Msg("retrying fetch")
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return model.Series{}, fmt.Errorf("%w: %s via %s: %w", model.ErrSourceUnavailable, spec.Name, g.provider.Name(), err)
	}
	if series.Len() == 0 {
		return model.Series{}, fmt.Errorf("%w: %s via %s: empty series", model.ErrSourceUnavailable, spec.Name, g.provider.Name())
	}
	if series.Key == "" {
		series.Key = spec.Name
	}
	return series, nil
}
