package engine

// Market is a regional Amazon marketplace.
type Market struct {
	Code        string
	Flag        string
	Currency    string
	KeepaDomain int
}

// Markets lists the marketplaces covered by the arbitrage analysis, in the
// deterministic order used for selection tie-breaks. FR is the home market.
var Markets = []Market{
	{Code: "FR", Flag: "🇫🇷", Currency: "EUR", KeepaDomain: 4},
	{Code: "DE", Flag: "🇩🇪", Currency: "EUR", KeepaDomain: 3},
	{Code: "IT", Flag: "🇮🇹", Currency: "EUR", KeepaDomain: 8},
	{Code: "ES", Flag: "🇪🇸", Currency: "EUR", KeepaDomain: 9},
	{Code: "UK", Flag: "🇬🇧", Currency: "GBP", KeepaDomain: 2},
	{Code: "US", Flag: "🇺🇸", Currency: "USD", KeepaDomain: 1},
}

// MarketByCode looks a market up by country code.
func MarketByCode(code string) *Market {
	for i := range Markets {
		if Markets[i].Code == code {
			return &Markets[i]
		}
	}
	return nil
}

// MarketQuote is the observed local price on one marketplace. Unavailable
// markets carry Available=false and a reason.
type MarketQuote struct {
	PriceLocal   float64
	Currency     string
	ExchangeRate float64
	Available    bool
	Reason       string
	URL          string
}

// MarketComparison is the per-marketplace arbitrage line.
type MarketComparison struct {
	Code         string        `json:"country_code"`
	Flag         string        `json:"flag"`
	Currency     string        `json:"currency"`
	ExchangeRate float64       `json:"exchange_rate"`
	PriceLocal   float64       `json:"price_local"`
	PriceEUR     float64       `json:"price_eur"`
	Available    bool          `json:"available"`
	Reason       string        `json:"reason,omitempty"`
	URL          string        `json:"url,omitempty"`
	Margin       *MarginResult `json:"margin"`
}

// ArbitrageResult compares margins across regional marketplaces.
type ArbitrageResult struct {
	Markets                 []MarketComparison `json:"markets"`
	BestSellMarket          string             `json:"best_sell_market,omitempty"`
	BestBuyMarket           string             `json:"best_buy_market,omitempty"`
	ReferenceMarket         string             `json:"reference_market"`
	ArbitrageOpportunityEUR *float64           `json:"arbitrage_opportunity_eur"`
}

// AnalyzeMarkets computes per-market EUR margins against a shared buy price
// and finds the best sell and buy combination. Unavailable markets are kept in
// the output but excluded from selection. The arbitrage opportunity is the
// margin gained by selling on the best market instead of the reference one;
// it is reported only when positive.
func AnalyzeMarkets(quotes map[string]MarketQuote, buyPrice *float64, buySource string, feeRate float64, reference string) *ArbitrageResult {
	result := &ArbitrageResult{ReferenceMarket: reference}

	var bestSell *MarketComparison
	var refMargin *MarginResult
	var bestBuy *MarketComparison

	for _, market := range Markets {
		quote, ok := quotes[market.Code]
		comparison := MarketComparison{
			Code:     market.Code,
			Flag:     market.Flag,
			Currency: market.Currency,
		}
		if !ok || !quote.Available {
			comparison.Available = false
			comparison.Reason = quote.Reason
			if comparison.Reason == "" {
				comparison.Reason = "no data"
			}
			result.Markets = append(result.Markets, comparison)
			continue
		}

		comparison.Available = true
		comparison.ExchangeRate = quote.ExchangeRate
		comparison.PriceLocal = quote.PriceLocal
		comparison.PriceEUR = round2(quote.PriceLocal * quote.ExchangeRate)
		comparison.URL = quote.URL

		sellPrice := comparison.PriceEUR
		comparison.Margin = ComputeMargin(&sellPrice, buyPrice, Fees(sellPrice, feeRate), buySource)

		result.Markets = append(result.Markets, comparison)
		last := &result.Markets[len(result.Markets)-1]

		if last.Margin != nil {
			if bestSell == nil || last.Margin.MarginEUR > bestSell.Margin.MarginEUR {
				bestSell = last
			}
		}
		if market.Code == reference {
			refMargin = last.Margin
		}
		if buyPrice != nil && last.PriceEUR < *buyPrice {
			if bestBuy == nil || last.PriceEUR < bestBuy.PriceEUR {
				bestBuy = last
			}
		}
	}

	if bestSell != nil {
		result.BestSellMarket = bestSell.Code
	}
	if bestBuy != nil {
		result.BestBuyMarket = bestBuy.Code
	} else if buyPrice != nil {
		// No marketplace undercuts the shared buy price; the acquisition
		// channel itself is the best buy.
		result.BestBuyMarket = buySource
	}

	if bestSell != nil && refMargin != nil && bestSell.Code != reference {
		diff := round2(bestSell.Margin.MarginEUR - refMargin.MarginEUR)
		if diff > 0 {
			result.ArbitrageOpportunityEUR = ptr(diff)
		}
	}
	return result
}
