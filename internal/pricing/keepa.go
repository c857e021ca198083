// Package pricing orchestrates the external price sources (Keepa, Google
// Custom Search, DataForSEO) and feeds their snapshots through the engine.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"resellcorner/internal/engine"
)

const keepaBaseURL = "https://api.keepa.com/product"

// Keepa timestamps are minutes since a fixed offset from the Unix epoch.
const keepaMinuteOffset = 21564000

// KeepaClient queries the Keepa product API. Responses are cached for an hour
// to stay within the token budget; one catalog product fans out into one call
// per marketplace.
type KeepaClient struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
}

func NewKeepaClient() *KeepaClient {
	return &KeepaClient{
		baseURL: keepaBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   cache.New(time.Hour, 10*time.Minute),
	}
}

type keepaResponse struct {
	TokensLeft int            `json:"tokensLeft"`
	Products   []KeepaProduct `json:"products"`
}

// KeepaProduct is the subset of the Keepa product payload the comparison
// needs. Prices are integer cents; -1 means no data.
type KeepaProduct struct {
	ASIN        string      `json:"asin"`
	Title       string      `json:"title"`
	Brand       string      `json:"brand"`
	CSV         [][]int     `json:"csv"`
	Stats       *KeepaStats `json:"stats"`
	BuyBoxPrice int         `json:"buyBoxPrice"`
}

type KeepaStats struct {
	Current []int `json:"current"`
}

// Product looks a product up by GTIN on one marketplace. The code parameter
// accepts EAN/UPC; Keepa resolves it to an ASIN on the given domain.
func (c *KeepaClient) Product(ctx context.Context, apiKey, gtin string, domain int) (*KeepaProduct, error) {
	cacheKey := fmt.Sprintf("keepa:%d:%s", domain, gtin)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*KeepaProduct), nil
	}

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("domain", fmt.Sprintf("%d", domain))
	params.Set("code", gtin)
	params.Set("stats", "1")
	params.Set("history", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keepa: status %d", resp.StatusCode)
	}

	var decoded keepaResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("keepa: decode response: %w", err)
	}
	if decoded.TokensLeft < 10 {
		logrus.WithField("tokens_left", decoded.TokensLeft).Warn("Keepa token budget running low")
	}
	if len(decoded.Products) == 0 {
		return nil, nil
	}

	product := &decoded.Products[0]
	c.cache.Set(cacheKey, product, cache.DefaultExpiration)
	return product, nil
}

// CurrentPrice extracts the current Amazon price in the marketplace currency.
// It prefers the live stats value, falls back to the last history entry, then
// the buy box. Returns nil when the product has no valid price.
func (p *KeepaProduct) CurrentPrice() *float64 {
	if p.Stats != nil && len(p.Stats.Current) > 0 {
		if cents := p.Stats.Current[0]; cents > 0 {
			price := float64(cents) / 100
			return &price
		}
	}
	if len(p.CSV) > 0 && len(p.CSV[0]) >= 2 {
		series := p.CSV[0]
		// walk back over trailing "no data" markers
		for i := len(series) - 1; i >= 1; i -= 2 {
			if cents := series[i]; cents > 0 {
				price := float64(cents) / 100
				return &price
			}
		}
	}
	if p.BuyBoxPrice > 0 {
		price := float64(p.BuyBoxPrice) / 100
		return &price
	}
	return nil
}

// PriceHistory decodes the Amazon price series into dated points. The raw
// series alternates keepa-minute timestamps and cent prices; -1 entries mark
// gaps and are dropped.
func (p *KeepaProduct) PriceHistory() []engine.PricePoint {
	if len(p.CSV) == 0 {
		return nil
	}
	series := p.CSV[0]
	points := make([]engine.PricePoint, 0, len(series)/2)
	for i := 0; i+1 < len(series); i += 2 {
		cents := series[i+1]
		if cents <= 0 {
			continue
		}
		points = append(points, engine.PricePoint{
			Date:  keepaTime(series[i]),
			Price: float64(cents) / 100,
		})
	}
	return points
}

func keepaTime(keepaMinute int) time.Time {
	return time.Unix(int64(keepaMinute+keepaMinuteOffset)*60, 0).UTC()
}
