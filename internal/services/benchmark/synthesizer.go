// Package benchmark synthesizes sector-relative percentile curves from
// industry means and dispersion estimates.
package benchmark

import (
	"fmt"
	"sync"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

// Standard normal quantiles for the synthesized breakpoints.
var quantiles = []struct {
	percentile int
	z          float64
}{
	{10, -1.2816},
	{25, -0.6745},
	{50, 0},
	{75, 0.6745},
	{90, 1.2816},
}

// DefaultCV is the dispersion fallback when an industry has no estimate.
// A zero CV would collapse every percentile onto the mean.
const DefaultCV = 0.5

// Damping factors correct the naive sigma for fat-tailed metric behavior.
// Metrics without an entry use no damping.
var dampingFactors = map[string]float64{
	"roic":             0.85,
	"roe":              0.80,
	"operating_margin": 1.00,
	"net_margin":       0.90,
	"gross_margin":     0.95,
}

// StatsProvider supplies industry means and dispersion. Implemented by the
// config-backed industry table.
type StatsProvider interface {
	IndustryStats(industry string) (*models.IndustryStats, bool)
}

// Synthesizer builds and caches percentile distributions per industry and
// metric. The cache is read-mostly after warmup; a mutex keeps first-build
// single-writer across scanner workers.
type Synthesizer struct {
	stats     StatsProvider
	defaultCV float64
	logger    *common.Logger

	mu    sync.Mutex
	cache map[string]*models.SectorBenchmarkDistribution
}

// NewSynthesizer creates a benchmark synthesizer.
func NewSynthesizer(stats StatsProvider, defaultCV float64, logger *common.Logger) *Synthesizer {
	if defaultCV <= 0 {
		defaultCV = DefaultCV
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Synthesizer{
		stats:     stats,
		defaultCV: defaultCV,
		logger:    logger,
		cache:     make(map[string]*models.SectorBenchmarkDistribution),
	}
}

// Synthesize returns the percentile distribution for a metric within an
// industry, building it on first request.
func (s *Synthesizer) Synthesize(industry, metric string) (*models.SectorBenchmarkDistribution, error) {
	key := industry + "|" + metric
	s.mu.Lock()
	defer s.mu.Unlock()

	if dist, ok := s.cache[key]; ok {
		return dist, nil
	}

	stats, ok := s.stats.IndustryStats(industry)
	if !ok {
		return nil, fmt.Errorf("no industry stats for %q", industry)
	}
	mean, ok := stats.Means[metric]
	if !ok {
		return nil, fmt.Errorf("industry %q has no mean for metric %q", industry, metric)
	}

	cv := stats.CV
	if cv <= 0 {
		cv = s.defaultCV
	}

	dist := synthesize(industry, metric, mean, cv)
	s.cache[key] = dist

	s.logger.Debug().
		Str("industry", industry).
		Str("metric", metric).
		Float64("mean", mean).
		Float64("cv", cv).
		Float64("sigma", dist.Sigma).
		Msg("synthesized benchmark distribution")
	return dist, nil
}

// synthesize derives the percentile curve: P_x = mean + Z_x * (mean*CV*d).
// Damping shrinks the naive sigma so the Gaussian does not overstate the
// spread of fat-tailed real-world metrics.
func synthesize(industry, metric string, mean, cv float64) *models.SectorBenchmarkDistribution {
	damping, ok := dampingFactors[metric]
	if !ok {
		damping = 1.0
	}
	sigma := mean * cv * damping
	if sigma < 0 {
		sigma = -sigma
	}

	curve := make([]models.Breakpoint, len(quantiles))
	for i, q := range quantiles {
		curve[i] = models.Breakpoint{
			Percentile: q.percentile,
			Value:      mean + q.z*sigma,
		}
	}

	return &models.SectorBenchmarkDistribution{
		Industry: industry,
		Metric:   metric,
		Mean:     mean,
		CV:       cv,
		Damping:  damping,
		Sigma:    sigma,
		Curve:    curve,
	}
}

// Damping exposes the damping factor applied to a metric, mainly for the
// scoring engine's z-score path.
func Damping(metric string) float64 {
	if d, ok := dampingFactors[metric]; ok {
		return d
	}
	return 1.0
}
