package engine

import (
	"sort"
	"time"
)

// Trend classifications. The French labels are part of the API contract.
const (
	TrendRising  = "hausse"
	TrendFalling = "baisse"
	TrendStable  = "stable"
)

// DefaultTrendThresholdPct is the relative change between the oldest and the
// newest third of the history above which the series is classified as
// rising or falling.
const DefaultTrendThresholdPct = 3.0

// PricePoint is one observation of a historical price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceTrend is the classification of a historical price series.
//
// IsFavorable is true when the trend is "baisse": falling prices mean the
// product gets cheaper to acquire, which is the favorable buying moment for
// a reseller. This buy-side convention is the one documented choice for the
// ambiguity left by the consuming UI.
type PriceTrend struct {
	Trend         string   `json:"trend"`
	VolatilityPct float64  `json:"volatility"`
	Avg30d        *float64 `json:"avg_30d"`
	Avg60d        *float64 `json:"avg_60d"`
	Avg90d        *float64 `json:"avg_90d"`
	Min30d        *float64 `json:"min_30d"`
	Max30d        *float64 `json:"max_30d"`
	IsFavorable   bool     `json:"is_favorable"`
	DataPoints    int      `json:"data_points"`
}

// AnalyzeTrend classifies a price history using the default ±3% threshold.
// Trailing windows (30/60/90 days) are measured back from now.
func AnalyzeTrend(history []PricePoint, now time.Time) PriceTrend {
	return AnalyzeTrendWithThreshold(history, now, DefaultTrendThresholdPct)
}

// AnalyzeTrendWithThreshold is AnalyzeTrend with a configurable classification
// threshold. Fewer than 2 points is a documented edge case, not an error:
// trend is "stable", volatility 0, averages nil.
func AnalyzeTrendWithThreshold(history []PricePoint, now time.Time, thresholdPct float64) PriceTrend {
	trend := PriceTrend{Trend: TrendStable, DataPoints: len(history)}
	if len(history) < 2 {
		return trend
	}

	points := make([]PricePoint, len(history))
	copy(points, history)
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	last30 := pricesSince(points, now.AddDate(0, 0, -30))
	last60 := pricesSince(points, now.AddDate(0, 0, -60))
	last90 := pricesSince(points, now.AddDate(0, 0, -90))

	if len(last30) > 0 {
		trend.Avg30d = ptr(round2(mean(last30)))
		lo, hi := last30[0], last30[0]
		for _, p := range last30 {
			if p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
		}
		trend.Min30d = ptr(lo)
		trend.Max30d = ptr(hi)

		if m := mean(last30); m > 0 {
			trend.VolatilityPct = round2(stddev(last30) / m * 100)
		}
	}
	if len(last60) > 0 {
		trend.Avg60d = ptr(round2(mean(last60)))
	}
	if len(last90) > 0 {
		trend.Avg90d = ptr(round2(mean(last90)))
	}

	// Compare the earliest third of the window to the most recent third.
	third := len(points) / 3
	if third < 1 {
		third = 1
	}
	early := make([]float64, 0, third)
	for _, p := range points[:third] {
		early = append(early, p.Price)
	}
	recent := make([]float64, 0, third)
	for _, p := range points[len(points)-third:] {
		recent = append(recent, p.Price)
	}

	earlyMean := mean(early)
	if earlyMean > 0 {
		changePct := (mean(recent) - earlyMean) / earlyMean * 100
		switch {
		case changePct > thresholdPct:
			trend.Trend = TrendRising
		case changePct < -thresholdPct:
			trend.Trend = TrendFalling
		}
	}

	trend.IsFavorable = trend.Trend == TrendFalling
	return trend
}

func pricesSince(sorted []PricePoint, cutoff time.Time) []float64 {
	var prices []float64
	for _, p := range sorted {
		if !p.Date.Before(cutoff) {
			prices = append(prices, p.Price)
		}
	}
	return prices
}
