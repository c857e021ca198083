package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyHistory(now time.Time, prices []float64) []PricePoint {
	history := make([]PricePoint, len(prices))
	for i, price := range prices {
		history[i] = PricePoint{
			Date:  now.AddDate(0, 0, -(len(prices) - 1 - i)),
			Price: price,
		}
	}
	return history
}

func TestAnalyzeTrend_ConstantSeriesIsStable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := dailyHistory(now, []float64{100, 100, 100, 100})

	trend := AnalyzeTrend(history, now)

	assert.Equal(t, TrendStable, trend.Trend)
	assert.Equal(t, 0.0, trend.VolatilityPct)
	assert.False(t, trend.IsFavorable)
	require.NotNil(t, trend.Avg30d)
	assert.Equal(t, 100.0, *trend.Avg30d)
	require.NotNil(t, trend.Min30d)
	assert.Equal(t, 100.0, *trend.Min30d)
	require.NotNil(t, trend.Max30d)
	assert.Equal(t, 100.0, *trend.Max30d)
}

func TestAnalyzeTrend_InsufficientHistory(t *testing.T) {
	now := time.Now()

	for _, history := range [][]PricePoint{nil, dailyHistory(now, []float64{42})} {
		trend := AnalyzeTrend(history, now)
		assert.Equal(t, TrendStable, trend.Trend)
		assert.Equal(t, 0.0, trend.VolatilityPct)
		assert.Nil(t, trend.Avg30d)
		assert.Nil(t, trend.Avg60d)
		assert.Nil(t, trend.Avg90d)
	}
}

func TestAnalyzeTrend_RisingSeries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i) // +29% over the window
	}

	trend := AnalyzeTrend(dailyHistory(now, prices), now)

	assert.Equal(t, TrendRising, trend.Trend)
	assert.False(t, trend.IsFavorable)
}

func TestAnalyzeTrend_FallingSeriesIsFavorable(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 130 - float64(i)
	}

	trend := AnalyzeTrend(dailyHistory(now, prices), now)

	assert.Equal(t, TrendFalling, trend.Trend)
	assert.True(t, trend.IsFavorable)
}

func TestAnalyzeTrend_SmallDriftStaysStable(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 2% drift over the window, below the 3% threshold.
	prices := []float64{100, 100.5, 101, 101.5, 102, 101.5, 102}

	trend := AnalyzeTrend(dailyHistory(now, prices), now)

	assert.Equal(t, TrendStable, trend.Trend)
}

func TestAnalyzeTrend_ThresholdIsConfigurable(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 101, 102, 103, 104, 105}
	history := dailyHistory(now, prices)

	assert.Equal(t, TrendRising, AnalyzeTrendWithThreshold(history, now, 3).Trend)
	assert.Equal(t, TrendStable, AnalyzeTrendWithThreshold(history, now, 10).Trend)
}

func TestAnalyzeTrend_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := dailyHistory(now, []float64{100, 98, 103, 97, 105, 96, 101})

	first := AnalyzeTrend(history, now)
	second := AnalyzeTrend(history, now)

	assert.Equal(t, first, second)
}

func TestAnalyzeTrend_TrailingWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := []PricePoint{
		{Date: now.AddDate(0, 0, -80), Price: 200},
		{Date: now.AddDate(0, 0, -50), Price: 150},
		{Date: now.AddDate(0, 0, -10), Price: 100},
		{Date: now.AddDate(0, 0, -5), Price: 110},
	}

	trend := AnalyzeTrend(history, now)

	require.NotNil(t, trend.Avg30d)
	assert.Equal(t, 105.0, *trend.Avg30d)
	require.NotNil(t, trend.Avg60d)
	assert.Equal(t, 120.0, *trend.Avg60d)
	require.NotNil(t, trend.Avg90d)
	assert.Equal(t, 140.0, *trend.Avg90d)
	require.NotNil(t, trend.Min30d)
	assert.Equal(t, 100.0, *trend.Min30d)
	require.NotNil(t, trend.Max30d)
	assert.Equal(t, 110.0, *trend.Max30d)
}

func TestAnalyzeTrend_VolatilityOfNoisySeries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// mean 100, population stddev 10 -> volatility 10%
	trend := AnalyzeTrend(dailyHistory(now, []float64{90, 110, 90, 110}), now)

	assert.Equal(t, 10.0, trend.VolatilityPct)
}

func TestPredict_LinearSeries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	buy := 50.0

	predictions := Predict(dailyHistory(now, prices), &buy, 0.15, 10)
	require.NotNil(t, predictions)
	require.Len(t, predictions.Horizons, 3)

	p30 := predictions.Horizons[0]
	assert.Equal(t, 30, p30.HorizonDays)
	assert.InDelta(t, 159.0, p30.PredictedPrice, 0.01)
	require.NotNil(t, p30.PredictedMarginEUR)
	assert.InDelta(t, 85.15, *p30.PredictedMarginEUR, 0.01)
	require.NotNil(t, p30.ProfitChangePct)
	assert.InDelta(t, 42.7, *p30.ProfitChangePct, 0.1)

	assert.Equal(t, 60, predictions.Horizons[1].HorizonDays)
	assert.Equal(t, 90, predictions.Horizons[2].HorizonDays)
	assert.Equal(t, ConfidenceMedium, predictions.ConfidenceLevel)
}

func TestPredict_RequiresTwoPoints(t *testing.T) {
	now := time.Now()
	assert.Nil(t, Predict(nil, nil, 0.15, 0))
	assert.Nil(t, Predict(dailyHistory(now, []float64{100}), nil, 0.15, 0))
}

func TestPredict_WithoutBuyPriceOnlyProjectsPrices(t *testing.T) {
	now := time.Now()
	predictions := Predict(dailyHistory(now, []float64{100, 102, 104}), nil, 0.15, 5)

	require.NotNil(t, predictions)
	for _, p := range predictions.Horizons {
		assert.Nil(t, p.PredictedMarginEUR)
		assert.Nil(t, p.ProfitChangePct)
		assert.Greater(t, p.PredictedPrice, 0.0)
	}
}

func TestPredict_PriceNeverNegative(t *testing.T) {
	now := time.Now()
	// steep decline crosses zero within 90 days
	predictions := Predict(dailyHistory(now, []float64{30, 20, 10}), nil, 0.15, 5)

	require.NotNil(t, predictions)
	assert.Equal(t, 0.0, predictions.Horizons[2].PredictedPrice)
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		points int
		vol    float64
		want   string
	}{
		{90, 5, ConfidenceHigh},
		{60, 14.9, ConfidenceHigh},
		{60, 15, ConfidenceMedium},
		{30, 20, ConfidenceMedium},
		{30, 25, ConfidenceLow},
		{10, 2, ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceLevel(tt.points, tt.vol),
			"points=%d vol=%.1f", tt.points, tt.vol)
	}
}
