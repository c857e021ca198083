package engine

import "math"

// Qualitative opportunity levels, by total-score thresholds.
const (
	LevelExcellent = "Excellent"
	LevelGood      = "Bon"
	LevelAverage   = "Moyen"
	LevelWeak      = "Faible"
)

// Component caps. The five components always sum to at most 100.
const (
	marginScoreMax      = 30
	trendScoreMax       = 25
	competitionScoreMax = 20
	volatilityScoreMax  = 15
	positionScoreMax    = 10
)

// OpportunityScore ranks the resale attractiveness of a product on a 0-100
// scale with its per-signal breakdown. Total is always the exact sum of the
// five components.
type OpportunityScore struct {
	Total            int    `json:"total"`
	MarginScore      int    `json:"margin_score"`
	TrendScore       int    `json:"trend_score"`
	CompetitionScore int    `json:"competition_score"`
	VolatilityScore  int    `json:"volatility_score"`
	PositionScore    int    `json:"position_score"`
	Level            string `json:"level"`
}

// Score combines margin, trend, competition, volatility and price-position
// signals. margin may be nil (uncompared product scores 0 on the margin
// component); currentPrice may be nil (position defaults to mid-range).
func Score(margin *MarginResult, trend PriceTrend, competitorCount int, currentPrice *float64) OpportunityScore {
	s := OpportunityScore{
		MarginScore:      marginScore(margin),
		TrendScore:       trendScore(trend.Trend),
		CompetitionScore: competitionScore(competitorCount),
		VolatilityScore:  volatilityScore(trend.VolatilityPct),
		PositionScore:    positionScore(currentPrice, trend.Min30d, trend.Max30d),
	}
	s.Total = clampInt(s.MarginScore+s.TrendScore+s.CompetitionScore+s.VolatilityScore+s.PositionScore, 0, 100)
	s.Level = scoreLevel(s.Total)
	return s
}

// marginScore grows linearly with the margin percentage, reaching the cap at
// a 50% margin.
func marginScore(margin *MarginResult) int {
	if margin == nil || margin.MarginPct == nil || *margin.MarginPct <= 0 {
		return 0
	}
	score := *margin.MarginPct / 50 * marginScoreMax
	return clampInt(int(math.Round(score)), 0, marginScoreMax)
}

// trendScore rewards falling prices (cheaper acquisition), penalizes rising
// ones.
func trendScore(trend string) int {
	switch trend {
	case TrendFalling:
		return trendScoreMax
	case TrendRising:
		return 5
	default:
		return 15
	}
}

// competitionScore loses 2 points per distinct seller, bottoming out at ten
// competitors.
func competitionScore(competitorCount int) int {
	if competitorCount < 0 {
		competitorCount = 0
	}
	if competitorCount > 10 {
		competitorCount = 10
	}
	return competitionScoreMax - 2*competitorCount
}

// volatilityScore decreases linearly, reaching 0 at 30% volatility.
func volatilityScore(volatilityPct float64) int {
	capped := math.Min(math.Max(volatilityPct, 0), 30)
	return clampInt(int(math.Round(volatilityScoreMax*(1-capped/30))), 0, volatilityScoreMax)
}

// positionScore is highest when the current price sits at the 30-day minimum.
// Without enough data to place the price, it defaults to the middle of the
// range.
func positionScore(currentPrice, min30d, max30d *float64) int {
	if currentPrice == nil || min30d == nil || max30d == nil || *max30d <= *min30d {
		return positionScoreMax / 2
	}
	pos := (*currentPrice - *min30d) / (*max30d - *min30d)
	pos = math.Min(math.Max(pos, 0), 1)
	return clampInt(int(math.Round(positionScoreMax*(1-pos))), 0, positionScoreMax)
}

func scoreLevel(total int) string {
	switch {
	case total >= 80:
		return LevelExcellent
	case total >= 60:
		return LevelGood
	case total >= 40:
		return LevelAverage
	default:
		return LevelWeak
	}
}
