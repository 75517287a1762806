package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/folio/internal/models"
)

const tradingDaysPerYear = 252

// zScore returns the one-tailed normal quantile for the supported VaR
// confidence levels.
func zScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.326
	case confidence >= 0.975:
		return 1.960
	case confidence >= 0.95:
		return 1.645
	default:
		return 1.282 // 90%
	}
}

// RiskInputs carries everything the risk computation needs. Series may be
// partial or missing per symbol; the computation never fabricates history.
type RiskInputs struct {
	Snapshot   *models.PortfolioSnapshot
	Series     map[string]*models.ReturnSeries
	Benchmark  *models.ReturnSeries
	MinHistory int
	Confidence float64
}

// constituent is one snapshot position admitted to the risk computation.
type constituent struct {
	symbol  string
	weight  float64
	returns []float64
}

// ComputeRisk calculates portfolio volatility, beta, and parametric VaR.
// Symbols lacking at least MinHistory return samples are excluded and listed;
// when the included series cannot be aligned for a covariance computation the
// result falls back to a weighted-average-of-variances approximation and says
// so via the Approximate flag.
func ComputeRisk(in RiskInputs) models.RiskMetrics {
	metrics := models.RiskMetrics{VaRConfidence: in.Confidence}

	var included []constituent
	var excluded []string
	totalIncludedValue := 0.0

	for _, pos := range in.Snapshot.Positions {
		series := in.Series[pos.Symbol]
		if series == nil || len(series.Returns) < in.MinHistory {
			excluded = append(excluded, pos.Symbol)
			continue
		}
		v, _ := pos.Value.Float64()
		included = append(included, constituent{symbol: pos.Symbol, returns: series.Returns})
		totalIncludedValue += v
	}
	sort.Strings(excluded)
	metrics.ExcludedSymbols = excluded

	if len(included) == 0 || totalIncludedValue <= 0 {
		return metrics
	}

	// Weights are value weights over the included constituents.
	idx := 0
	for _, pos := range in.Snapshot.Positions {
		if idx < len(included) && included[idx].symbol == pos.Symbol {
			v, _ := pos.Value.Float64()
			included[idx].weight = v / totalIncludedValue
			idx++
		}
	}

	dailyVariance, approximate := portfolioVariance(included)
	metrics.Approximate = approximate

	annualVol := math.Sqrt(dailyVariance) * math.Sqrt(tradingDaysPerYear)
	metrics.Volatility = &annualVol

	// Parametric VaR over one day at the configured confidence level,
	// expressed in portfolio currency. Scaled by the value the computed
	// variance actually covers: excluded symbols carry no history, so they
	// must not inherit the included portfolio's volatility.
	varAmount := zScore(in.Confidence) * math.Sqrt(dailyVariance) * totalIncludedValue
	metrics.ValueAtRisk = &varAmount

	if beta, ok := portfolioBeta(included, in.Benchmark, in.MinHistory); ok {
		metrics.Beta = &beta
	}

	return metrics
}

// portfolioVariance returns the daily portfolio return variance. When all
// constituent series share one length the full covariance form w'Σw is used;
// otherwise the weighted-average-of-variances approximation applies, which
// ignores diversification benefit and is flagged as approximate.
func portfolioVariance(included []constituent) (float64, bool) {
	if len(included) == 1 {
		return stat.Variance(included[0].returns, nil), false
	}

	aligned := true
	n := len(included[0].returns)
	for _, c := range included[1:] {
		if len(c.returns) != n {
			aligned = false
			break
		}
	}

	if aligned {
		variance := 0.0
		for i := range included {
			for j := range included {
				var cov float64
				if i == j {
					cov = stat.Variance(included[i].returns, nil)
				} else {
					cov = stat.Covariance(included[i].returns, included[j].returns, nil)
				}
				variance += included[i].weight * included[j].weight * cov
			}
		}
		return math.Max(variance, 0), false
	}

	variance := 0.0
	for _, c := range included {
		variance += c.weight * stat.Variance(c.returns, nil)
	}
	return variance, true
}

// portfolioBeta computes the value-weighted combination of constituent betas
// relative to the benchmark series, aligning each pair on its trailing
// overlap. Returns false when no benchmark history is usable.
func portfolioBeta(included []constituent, benchmark *models.ReturnSeries, minHistory int) (float64, bool) {
	if benchmark == nil || len(benchmark.Returns) < minHistory {
		return 0, false
	}

	beta := 0.0
	coveredWeight := 0.0

	for _, c := range included {
		n := len(c.returns)
		if len(benchmark.Returns) < n {
			n = len(benchmark.Returns)
		}
		if n < minHistory {
			continue
		}

		asset := c.returns[len(c.returns)-n:]
		bench := benchmark.Returns[len(benchmark.Returns)-n:]

		benchVar := stat.Variance(bench, nil)
		if benchVar == 0 {
			continue
		}

		beta += c.weight * (stat.Covariance(asset, bench, nil) / benchVar)
		coveredWeight += c.weight
	}

	if coveredWeight == 0 {
		return 0, false
	}
	return beta / coveredWeight, true
}
