package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func marginWithPct(pct float64) *MarginResult {
	return &MarginResult{MarginPct: ptr(pct)}
}

func TestScore_ComponentsSumToTotal(t *testing.T) {
	trend := PriceTrend{
		Trend:         TrendFalling,
		VolatilityPct: 8,
		Min30d:        ptr(90.0),
		Max30d:        ptr(110.0),
	}
	current := 95.0

	s := Score(marginWithPct(22), trend, 3, &current)

	assert.Equal(t, s.Total,
		s.MarginScore+s.TrendScore+s.CompetitionScore+s.VolatilityScore+s.PositionScore)
	assert.GreaterOrEqual(t, s.Total, 0)
	assert.LessOrEqual(t, s.Total, 100)
}

func TestScore_PerfectConditions(t *testing.T) {
	trend := PriceTrend{
		Trend:         TrendFalling,
		VolatilityPct: 0,
		Min30d:        ptr(100.0),
		Max30d:        ptr(120.0),
	}
	current := 100.0 // sitting at the 30-day minimum

	s := Score(marginWithPct(50), trend, 0, &current)

	assert.Equal(t, 30, s.MarginScore)
	assert.Equal(t, 25, s.TrendScore)
	assert.Equal(t, 20, s.CompetitionScore)
	assert.Equal(t, 15, s.VolatilityScore)
	assert.Equal(t, 10, s.PositionScore)
	assert.Equal(t, 100, s.Total)
	assert.Equal(t, LevelExcellent, s.Level)
}

func TestScore_WorstConditions(t *testing.T) {
	trend := PriceTrend{
		Trend:         TrendRising,
		VolatilityPct: 45,
		Min30d:        ptr(100.0),
		Max30d:        ptr(120.0),
	}
	current := 120.0 // at the 30-day maximum

	s := Score(nil, trend, 12, &current)

	assert.Equal(t, 0, s.MarginScore)
	assert.Equal(t, 5, s.TrendScore)
	assert.Equal(t, 0, s.CompetitionScore)
	assert.Equal(t, 0, s.VolatilityScore)
	assert.Equal(t, 0, s.PositionScore)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, LevelWeak, s.Level)
}

func TestMarginScore(t *testing.T) {
	tests := []struct {
		name   string
		margin *MarginResult
		want   int
	}{
		{"nil margin", nil, 0},
		{"no percentage", &MarginResult{}, 0},
		{"negative", marginWithPct(-10), 0},
		{"zero", marginWithPct(0), 0},
		{"mid range", marginWithPct(25), 15},
		{"cap at 50 percent", marginWithPct(50), 30},
		{"above cap", marginWithPct(80), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marginScore(tt.margin))
		})
	}
}

func TestCompetitionScore(t *testing.T) {
	assert.Equal(t, 20, competitionScore(0))
	assert.Equal(t, 14, competitionScore(3))
	assert.Equal(t, 0, competitionScore(10))
	assert.Equal(t, 0, competitionScore(25))
	assert.Equal(t, 20, competitionScore(-1))
}

func TestVolatilityScore(t *testing.T) {
	assert.Equal(t, 15, volatilityScore(0))
	assert.Equal(t, 10, volatilityScore(10))
	assert.Equal(t, 0, volatilityScore(30))
	assert.Equal(t, 0, volatilityScore(60))
}

func TestPositionScore_DefaultsToMidRange(t *testing.T) {
	price := 100.0
	lo, hi := 100.0, 100.0

	assert.Equal(t, 5, positionScore(nil, ptr(90), ptr(110)))
	assert.Equal(t, 5, positionScore(&price, nil, nil))
	// flat 30-day range
	assert.Equal(t, 5, positionScore(&price, &lo, &hi))
}

func TestScoreLevels(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{100, LevelExcellent},
		{80, LevelExcellent},
		{79, LevelGood},
		{60, LevelGood},
		{59, LevelAverage},
		{40, LevelAverage},
		{39, LevelWeak},
		{0, LevelWeak},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreLevel(tt.total), "total=%d", tt.total)
	}
}
