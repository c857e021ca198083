package engine

import (
	"math"
	"sort"
)

// Confidence levels of forward predictions.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Confidence thresholds. High needs a dense history and a calm series;
// medium tolerates a shorter or noisier one.
const (
	highConfidenceMinPoints   = 60
	highConfidenceMaxVolPct   = 15.0
	mediumConfidenceMinPoints = 30
	mediumConfidenceMaxVolPct = 25.0
)

// Prediction is the forecast for one horizon.
type Prediction struct {
	HorizonDays        int      `json:"horizon_days"`
	PredictedPrice     float64  `json:"predicted_price"`
	PredictedMarginEUR *float64 `json:"predicted_margin_eur"`
	ProfitChangePct    *float64 `json:"profit_change_pct"`
}

// Predictions is the regression-based profitability forecast over the
// standard 30/60/90-day horizons.
type Predictions struct {
	Horizons        []Prediction `json:"horizons"`
	ConfidenceLevel string       `json:"confidence_level"`
	Slope           float64      `json:"slope_per_day"`
}

// Predict fits a least-squares line through the price history and projects the
// sell price 30, 60 and 90 days past the last observation. The predicted
// margin substitutes the projected price for the current sell price, with fees
// recomputed at the projected level. Requires at least 2 points; buyPrice may
// be nil, in which case margins stay nil and only prices are projected.
func Predict(history []PricePoint, buyPrice *float64, feeRate float64, volatilityPct float64) *Predictions {
	if len(history) < 2 {
		return nil
	}

	points := make([]PricePoint, len(history))
	copy(points, history)
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	origin := points[0].Date
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date.Sub(origin).Hours() / 24
		ys[i] = p.Price
	}

	slope, intercept := linearFit(xs, ys)
	lastX := xs[len(xs)-1]
	lastPrice := ys[len(ys)-1]

	currentMargin := marginAt(lastPrice, buyPrice, feeRate)

	result := &Predictions{
		ConfidenceLevel: confidenceLevel(len(points), volatilityPct),
		Slope:           round2(slope),
	}
	for _, horizon := range []int{30, 60, 90} {
		predicted := intercept + slope*(lastX+float64(horizon))
		if predicted < 0 {
			predicted = 0
		}
		predicted = round2(predicted)

		p := Prediction{HorizonDays: horizon, PredictedPrice: predicted}
		if predictedMargin := marginAt(predicted, buyPrice, feeRate); predictedMargin != nil {
			p.PredictedMarginEUR = ptr(predictedMargin.MarginEUR)
			if currentMargin != nil && currentMargin.MarginEUR != 0 {
				change := (predictedMargin.MarginEUR - currentMargin.MarginEUR) /
					math.Abs(currentMargin.MarginEUR) * 100
				p.ProfitChangePct = ptr(round1(change))
			}
		}
		result.Horizons = append(result.Horizons, p)
	}
	return result
}

func marginAt(sellPrice float64, buyPrice *float64, feeRate float64) *MarginResult {
	return ComputeMargin(&sellPrice, buyPrice, Fees(sellPrice, feeRate), SourceSupplier)
}

func confidenceLevel(points int, volatilityPct float64) string {
	switch {
	case points >= highConfidenceMinPoints && volatilityPct < highConfidenceMaxVolPct:
		return ConfidenceHigh
	case points >= mediumConfidenceMinPoints && volatilityPct < mediumConfidenceMaxVolPct:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// linearFit returns the least-squares slope and intercept. A degenerate x
// spread (all observations the same day) yields a flat line at the mean.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// LastObservation returns the newest point of a history, or nil when empty.
func LastObservation(history []PricePoint) *PricePoint {
	if len(history) == 0 {
		return nil
	}
	last := history[0]
	for _, p := range history[1:] {
		if p.Date.After(last.Date) {
			last = p
		}
	}
	return &last
}
