package pricing

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"resellcorner/internal/engine"
	"resellcorner/internal/kafka"
	"resellcorner/internal/models"
)

// Comparer runs the full comparison pipeline for one product: concurrent
// external fetches, the pure engine over the snapshot, persistence of the
// derived fields, and a price-update event when the best price moved.
type Comparer struct {
	db       *gorm.DB
	producer sarama.SyncProducer
	keepa    *KeepaClient

	feeRate        float64
	trendThreshold float64
	homeMarket     string
	converter      *engine.Converter
}

func NewComparer(db *gorm.DB, producer sarama.SyncProducer) *Comparer {
	return &Comparer{
		db:             db,
		producer:       producer,
		keepa:          NewKeepaClient(),
		feeRate:        viper.GetFloat64("FEE_RATE"),
		trendThreshold: viper.GetFloat64("TREND_THRESHOLD_PCT"),
		homeMarket:     viper.GetString("HOME_MARKET"),
		converter: engine.NewConverter(map[string]float64{
			"GBP": viper.GetFloat64("RATE_GBP_EUR"),
			"USD": viper.GetFloat64("RATE_USD_EUR"),
		}),
	}
}

// SearcherFor picks the web-price provider configured in settings. Returns
// nil when no credentials are set; the comparison then runs without Google
// data.
func SearcherFor(settings *models.Settings) PriceSearcher {
	switch settings.GoogleSearchMode {
	case "dataforseo":
		if settings.DataForSEOLogin != "" && settings.DataForSEOPassword != "" {
			return NewDataForSEOClient(settings.DataForSEOLogin, settings.DataForSEOPassword)
		}
	default:
		if settings.GoogleAPIKey != "" && settings.GoogleSearchEngineID != "" {
			return NewCustomSearchClient(settings.GoogleAPIKey, settings.GoogleSearchEngineID)
		}
	}
	return nil
}

// snapshot is the aggregated external data for one product, assembled before
// the engine runs.
type snapshot struct {
	mu      sync.Mutex
	quotes  map[string]engine.MarketQuote
	home    *KeepaProduct
	web     *WebSearchResult
	history []engine.PricePoint
}

// Compare fetches all external sources for the product and recomputes its
// derived pricing fields. Missing sources leave their fields nil; only
// transport failures on every source make the run itself fail.
func (c *Comparer) Compare(ctx context.Context, product *models.Product) error {
	var settings models.Settings
	if err := c.db.First(&settings).Error; err != nil {
		return err
	}

	snap := &snapshot{quotes: make(map[string]engine.MarketQuote)}

	g, gctx := errgroup.WithContext(ctx)

	if settings.KeepaAPIKey != "" && product.GTIN != "" {
		for _, market := range engine.Markets {
			market := market
			g.Go(func() error {
				kp, err := c.keepa.Product(gctx, settings.KeepaAPIKey, product.GTIN, market.KeepaDomain)
				if err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"product_id": product.ID,
						"market":     market.Code,
					}).Warn("Keepa fetch failed")
					return nil
				}
				c.recordMarket(snap, market, kp)
				return nil
			})
		}
	}

	if searcher := SearcherFor(&settings); searcher != nil && product.Name != "" {
		g.Go(func() error {
			web, err := searcher.SearchPrices(gctx, product.Name)
			if err != nil {
				logrus.WithError(err).WithField("product_id", product.ID).Warn("Web price search failed")
				return nil
			}
			snap.mu.Lock()
			snap.web = web
			snap.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	c.apply(product, snap)

	if err := c.db.Save(product).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"gtin":       product.GTIN,
	}).Info("Product compared")
	return nil
}

func (c *Comparer) recordMarket(snap *snapshot, market engine.Market, kp *KeepaProduct) {
	snap.mu.Lock()
	defer snap.mu.Unlock()

	if kp == nil {
		snap.quotes[market.Code] = engine.MarketQuote{Reason: "no data"}
		return
	}

	rate, err := c.converter.Rate(market.Currency)
	if err != nil {
		snap.quotes[market.Code] = engine.MarketQuote{Reason: "unsupported currency"}
		return
	}
	price := kp.CurrentPrice()
	if price == nil {
		snap.quotes[market.Code] = engine.MarketQuote{Reason: "no price"}
		return
	}

	snap.quotes[market.Code] = engine.MarketQuote{
		PriceLocal:   *price,
		Currency:     market.Currency,
		ExchangeRate: rate,
		Available:    true,
	}
	if market.Code == c.homeMarket {
		snap.home = kp
		snap.history = kp.PriceHistory()
	}
}

// apply runs the engine over the snapshot and writes the derived fields onto
// the product, overwriting the previous comparison.
func (c *Comparer) apply(product *models.Product, snap *snapshot) {
	now := time.Now().UTC()
	previousBest := product.BestPriceEUR

	// sell side: current Amazon price on the home market, in EUR
	var sellPrice *float64
	if quote, ok := snap.quotes[c.homeMarket]; ok && quote.Available {
		price := math.Round(quote.PriceLocal*quote.ExchangeRate*100) / 100
		sellPrice = &price
	}
	if snap.home != nil {
		product.AmazonASIN = snap.home.ASIN
	}
	product.AmazonPriceEUR = sellPrice
	var fees float64
	product.AmazonFeesEUR = nil
	if sellPrice != nil {
		fees = engine.Fees(*sellPrice, c.feeRate)
		product.AmazonFeesEUR = &fees
	}

	// buy side: supplier plus the lowest web offer
	var offers []engine.BuyOffer
	var supplierBuy *float64
	if product.SupplierPriceEUR > 0 {
		supplierBuy = &product.SupplierPriceEUR
		offers = append(offers, engine.BuyOffer{Source: engine.SourceSupplier, Price: product.SupplierPriceEUR})
	}
	product.GoogleLowestPriceEUR = nil
	product.GoogleOfferCount = 0
	if snap.web != nil {
		product.GoogleLowestPriceEUR = snap.web.LowestPrice
		product.GoogleOfferCount = snap.web.OfferCount
		if snap.web.LowestPrice != nil {
			offers = append(offers, engine.BuyOffer{Source: engine.SourceGoogle, Price: *snap.web.LowestPrice})
		}
	}

	supplierMargin := engine.ComputeMargin(sellPrice, supplierBuy, fees, engine.SourceSupplier)
	googleMargin := engine.ComputeMargin(sellPrice, product.GoogleLowestPriceEUR, fees, engine.SourceGoogle)
	best := engine.BestMargin(sellPrice, offers, c.feeRate)

	product.SupplierMarginEUR = marginEUR(supplierMargin)
	product.GoogleMarginEUR = marginEUR(googleMargin)
	product.AmazonMarginEUR = marginEUR(best)
	product.AmazonMarginPct = marginPct(best)
	product.MarginEUR = marginEUR(best)
	product.MarginPct = marginPct(best)

	product.CheapestSource = ""
	product.CheapestBuyPriceEUR = nil
	var buyPrice *float64
	buySource := engine.SourceSupplier
	if cheapest := engine.CheapestOffer(offers); cheapest != nil {
		product.CheapestSource = cheapest.Source
		product.CheapestBuyPriceEUR = &cheapest.Price
		buyPrice = &cheapest.Price
		buySource = cheapest.Source
	}
	product.BestPriceEUR = buyPrice

	trend := engine.AnalyzeTrendWithThreshold(snap.history, now, c.trendThreshold)
	predictions := engine.Predict(snap.history, buyPrice, c.feeRate, trend.VolatilityPct)
	score := engine.Score(best, trend, product.GoogleOfferCount, sellPrice)
	arbitrage := engine.AnalyzeMarkets(snap.quotes, buyPrice, buySource, c.feeRate, c.homeMarket)

	product.OpportunityScore = &score.Total
	product.OpportunityLevel = score.Level
	product.PriceTrend = mustJSON(trend)
	product.OpportunityDetails = mustJSON(score)
	product.ProfitabilityPredictions = mustJSON(predictions)
	product.MultiMarketArbitrage = mustJSON(arbitrage)
	product.ComparedAt = &now

	c.publishPriceUpdate(product, previousBest)
}

func (c *Comparer) publishPriceUpdate(product *models.Product, previousBest *float64) {
	if c.producer == nil || product.BestPriceEUR == nil {
		return
	}
	if previousBest != nil && *previousBest == *product.BestPriceEUR {
		return
	}
	payload, err := json.Marshal(models.PriceUpdateEvent{
		ProductID:   product.ID,
		ProductName: product.Name,
		Source:      product.CheapestSource,
		OldPrice:    previousBest,
		NewPrice:    *product.BestPriceEUR,
	})
	if err != nil {
		return
	}
	if err := kafka.Publish(c.producer, kafka.TopicPriceUpdates, payload); err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Error("Failed to publish price update")
	}
}

// CompareMany compares a set of products with bounded concurrency. Individual
// failures are counted, not propagated; the batch always completes.
func (c *Comparer) CompareMany(ctx context.Context, ids []uint) (success, failed int) {
	var ok, ko atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			var product models.Product
			if err := c.db.First(&product, id).Error; err != nil {
				ko.Add(1)
				return nil
			}
			if err := c.Compare(gctx, &product); err != nil {
				logrus.WithError(err).WithField("product_id", id).Error("Comparison failed")
				ko.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	g.Wait()
	return int(ok.Load()), int(ko.Load())
}

func marginEUR(m *engine.MarginResult) *float64 {
	if m == nil {
		return nil
	}
	v := m.MarginEUR
	return &v
}

func marginPct(m *engine.MarginResult) *float64 {
	if m == nil {
		return nil
	}
	return m.MarginPct
}

func mustJSON(v any) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
