package engine

// DefaultFeeRate is the marketplace selling fee applied to the sell price
// (referral fee plus VAT-inclusive selling costs).
const DefaultFeeRate = 0.15

// Buy source identifiers.
const (
	SourceSupplier = "supplier"
	SourceGoogle   = "google"
	SourceAmazon   = "amazon"
)

// MarginResult is the outcome of one buy/sell margin computation.
// MarginEUR = SellPrice - BuyPrice - Fees, 2-decimal rounded. MarginPct is nil
// when the buy price is not strictly positive.
type MarginResult struct {
	BuySource string   `json:"buy_source"`
	BuyPrice  float64  `json:"buy_price"`
	SellPrice float64  `json:"sell_price"`
	Fees      float64  `json:"fees"`
	MarginEUR float64  `json:"margin_amount"`
	MarginPct *float64 `json:"margin_percentage"`
}

// Fees computes the marketplace selling fee for a sell price, rounded to
// 2 decimals.
func Fees(sellPrice, feeRate float64) float64 {
	return round2(sellPrice * feeRate)
}

// ComputeMargin computes the margin of buying at buyPrice and selling at
// sellPrice with the given fees. Returns nil when either price is missing;
// a missing price means "not comparable", never an error. Negative margins
// are valid results.
func ComputeMargin(sellPrice, buyPrice *float64, fees float64, buySource string) *MarginResult {
	if sellPrice == nil || buyPrice == nil {
		return nil
	}

	result := &MarginResult{
		BuySource: buySource,
		BuyPrice:  *buyPrice,
		SellPrice: *sellPrice,
		Fees:      fees,
		MarginEUR: round2(*sellPrice - *buyPrice - fees),
	}
	if *buyPrice > 0 {
		result.MarginPct = ptr(round1(result.MarginEUR / *buyPrice * 100))
	}
	return result
}

// BuyOffer is one acquisition channel with its EUR price.
type BuyOffer struct {
	Source string
	Price  float64
}

// CheapestOffer selects the buy offer with the lowest price. On an exact tie
// the supplier channel wins, so the selection stays deterministic regardless
// of input order.
func CheapestOffer(offers []BuyOffer) *BuyOffer {
	var best *BuyOffer
	for i := range offers {
		offer := &offers[i]
		switch {
		case best == nil:
			best = offer
		case offer.Price < best.Price:
			best = offer
		case offer.Price == best.Price && offer.Source == SourceSupplier && best.Source != SourceSupplier:
			best = offer
		}
	}
	return best
}

// BestMargin computes the margin against the globally cheapest buy offer.
// This is the figure surfaced as margin_eur: the sell price combined with the
// cheapest acquisition channel found across all sources.
func BestMargin(sellPrice *float64, offers []BuyOffer, feeRate float64) *MarginResult {
	cheapest := CheapestOffer(offers)
	if cheapest == nil || sellPrice == nil {
		return nil
	}
	fees := Fees(*sellPrice, feeRate)
	return ComputeMargin(sellPrice, &cheapest.Price, fees, cheapest.Source)
}
