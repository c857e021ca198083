package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

// WebOffer is one seller's price found through web search.
type WebOffer struct {
	Seller string  `json:"seller"`
	Price  float64 `json:"price"`
	URL    string  `json:"url,omitempty"`
}

// WebSearchResult aggregates the shopping offers found for a product.
type WebSearchResult struct {
	LowestPrice *float64   `json:"lowest_price"`
	OfferCount  int        `json:"offer_count"`
	Offers      []WebOffer `json:"offers"`
}

// PriceSearcher finds web prices for a product query. Two implementations
// exist, selected by the google_search_mode setting.
type PriceSearcher interface {
	SearchPrices(ctx context.Context, query string) (*WebSearchResult, error)
}

func summarize(offers []WebOffer) *WebSearchResult {
	result := &WebSearchResult{Offers: offers}
	sellers := lo.Uniq(lo.Map(offers, func(o WebOffer, _ int) string { return o.Seller }))
	result.OfferCount = len(sellers)
	if len(offers) > 0 {
		lowest := lo.MinBy(offers, func(a, b WebOffer) bool { return a.Price < b.Price }).Price
		result.LowestPrice = &lowest
	}
	return result
}

// CustomSearchClient queries the Google Custom Search JSON API and extracts
// prices from the offer pagemap of shopping-enabled results.
type CustomSearchClient struct {
	APIKey   string
	EngineID string

	baseURL string
	http    *http.Client
	cache   *cache.Cache
}

func NewCustomSearchClient(apiKey, engineID string) *CustomSearchClient {
	return &CustomSearchClient{
		APIKey:   apiKey,
		EngineID: engineID,
		baseURL:  "https://www.googleapis.com/customsearch/v1",
		http:     &http.Client{Timeout: 30 * time.Second},
		cache:    cache.New(time.Hour, 10*time.Minute),
	}
}

type customSearchResponse struct {
	Items []struct {
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
		PageMap     struct {
			Offer []struct {
				Price string `json:"price"`
			} `json:"offer"`
		} `json:"pagemap"`
	} `json:"items"`
}

func (c *CustomSearchClient) SearchPrices(ctx context.Context, query string) (*WebSearchResult, error) {
	cacheKey := "cse:" + query
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*WebSearchResult), nil
	}

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("cx", c.EngineID)
	params.Set("q", query)
	params.Set("num", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custom search: status %d", resp.StatusCode)
	}

	var decoded customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("custom search: decode response: %w", err)
	}

	var offers []WebOffer
	for _, item := range decoded.Items {
		for _, offer := range item.PageMap.Offer {
			price, ok := parsePrice(offer.Price)
			if !ok {
				continue
			}
			offers = append(offers, WebOffer{
				Seller: item.DisplayLink,
				Price:  price,
				URL:    item.Link,
			})
		}
	}

	result := summarize(offers)
	c.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

// parsePrice handles the price formats found in offer pagemaps: "12.99",
// "12,99", "€12.99", "12.99 EUR".
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimLeft(cleaned, "€$£ ")
	if i := strings.IndexByte(cleaned, ' '); i > 0 {
		cleaned = cleaned[:i]
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// DataForSEOClient queries the DataForSEO Google Shopping live endpoint.
type DataForSEOClient struct {
	Login    string
	Password string

	baseURL string
	http    *http.Client
	cache   *cache.Cache
}

func NewDataForSEOClient(login, password string) *DataForSEOClient {
	return &DataForSEOClient{
		Login:    login,
		Password: password,
		baseURL:  "https://api.dataforseo.com/v3/merchant/google/products/live/advanced",
		http:     &http.Client{Timeout: 60 * time.Second},
		cache:    cache.New(time.Hour, 10*time.Minute),
	}
}

type dataForSEOResponse struct {
	Tasks []struct {
		Result []struct {
			Items []struct {
				Title  string `json:"title"`
				Seller string `json:"seller"`
				URL    string `json:"url"`
				Price  struct {
					Current float64 `json:"current"`
				} `json:"price"`
			} `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

func (c *DataForSEOClient) SearchPrices(ctx context.Context, query string) (*WebSearchResult, error) {
	cacheKey := "dfs:" + query
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*WebSearchResult), nil
	}

	payload, err := json.Marshal([]map[string]any{{
		"keyword":       query,
		"location_code": 2250, // France
		"language_code": "fr",
	}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.Login, c.Password)
	req.Header.Set("Content-Type", "application/json")

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
		return nil, fmt.Errorf("dataforseo: status %d", resp.StatusCode)
	}

	var decoded dataForSEOResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("dataforseo: decode response: %w", err)
	}

	var offers []WebOffer
	for _, task := range decoded.Tasks {
		for _, result := range task.Result {
			for _, item := range result.Items {
				if item.Price.Current <= 0 {
					continue
				}
				seller := item.Seller
				if seller == "" {
					seller = item.Title
				}
				offers = append(offers, WebOffer{
					Seller: seller,
					Price:  item.Price.Current,
					URL:    item.URL,
				})
			}
		}
	}

	result := summarize(offers)
	c.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}
