package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a supplier catalog entry together with the derived pricing fields
// populated by the last comparison run. Price quotes are overwritten on each
// refresh; history lives in the external price services, not here.
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GTIN     string `gorm:"uniqueIndex;not null" json:"gtin"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	ImageURL string `json:"image_url,omitempty"`

	SupplierPrice    float64 `json:"supplier_price"`
	SupplierCurrency string  `json:"supplier_currency"`
	SupplierPriceEUR float64 `json:"supplier_price_eur"`

	ComparedAt *time.Time `json:"compared_at,omitempty"`

	AmazonASIN           string   `json:"amazon_asin,omitempty"`
	AmazonPriceEUR       *float64 `json:"amazon_price_eur"`
	AmazonFeesEUR        *float64 `json:"amazon_fees_eur"`
	GoogleLowestPriceEUR *float64 `json:"google_lowest_price_eur"`
	GoogleOfferCount     int      `json:"google_offer_count"`
	BestPriceEUR         *float64 `json:"best_price_eur"`

	AmazonMarginEUR   *float64 `json:"amazon_margin_eur"`
	AmazonMarginPct   *float64 `json:"amazon_margin_percentage"`
	SupplierMarginEUR *float64 `json:"supplier_margin_eur"`
	GoogleMarginEUR   *float64 `json:"google_margin_eur"`
	MarginEUR         *float64 `json:"margin_eur"`
	MarginPct         *float64 `json:"margin_percentage"`

	CheapestSource      string   `json:"cheapest_source,omitempty"`
	CheapestBuyPriceEUR *float64 `json:"cheapest_buy_price_eur"`

	OpportunityScore *int   `json:"opportunity_score"`
	OpportunityLevel string `json:"opportunity_level,omitempty"`

	PriceTrend               datatypes.JSON `gorm:"type:jsonb" json:"price_trend,omitempty"`
	OpportunityDetails       datatypes.JSON `gorm:"type:jsonb" json:"opportunity_details,omitempty"`
	ProfitabilityPredictions datatypes.JSON `gorm:"type:jsonb" json:"profitability_predictions,omitempty"`
	MultiMarketArbitrage     datatypes.JSON `gorm:"type:jsonb" json:"multi_market_arbitrage,omitempty"`
}

// Compared reports whether the product has been through at least one comparison run.
func (p *Product) Compared() bool {
	return p.ComparedAt != nil
}

// Supplier is a sourcing website the user buys from.
type Supplier struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `json:"url"`
	LogoURL   string    `json:"logo_url,omitempty"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Favorite is a bookmarked product, tracked by the scheduled price refresh.
type Favorite struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
	ProductID   *uint     `gorm:"index" json:"product_id,omitempty"`
	ProductName string    `json:"product_name"`
	ProductURL  string    `json:"product_url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	SearchQuery string    `json:"search_query,omitempty"`
}

// Alert fires when the tracked price drops to the target.
type Alert struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
	ProductID    *uint     `gorm:"index" json:"product_id,omitempty"`
	ProductName  string    `json:"product_name"`
	ProductURL   string    `json:"product_url,omitempty"`
	TargetPrice  float64   `json:"target_price"`
	CurrentPrice *float64  `json:"current_price"`
	SupplierID   *uint     `json:"supplier_id,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	Triggered    bool      `gorm:"default:false" json:"triggered"`
}

// PriceLog records one observed best-price change for a product.
type PriceLog struct {
	gorm.Model
	ProductID  uint
	Source     string
	OldPrice   float64
	NewPrice   float64
	ChangeTime time.Time
}

// SearchHistory records one text price search, for the dashboard recents.
type SearchHistory struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Query        string    `json:"query"`
	SearchType   string    `json:"search_type"`
	ResultsCount int       `json:"results_count"`
	LowestPrice  *float64  `json:"lowest_price"`
}

// Settings holds the external API credentials and search mode. Single row.
type Settings struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UpdatedAt time.Time `json:"-"`

	GoogleAPIKey         string `json:"-"`
	GoogleSearchEngineID string `json:"-"`
	KeepaAPIKey          string `json:"-"`
	DataForSEOLogin      string `json:"-"`
	DataForSEOPassword   string `json:"-"`

	// custom_search or dataforseo
	GoogleSearchMode string `gorm:"default:custom_search" json:"google_search_mode"`
}

// PriceUpdateEvent is published on the PRICE_UPDATES topic whenever a
// comparison run observes a different best price for a product.
type PriceUpdateEvent struct {
	ProductID   uint     `json:"product_id"`
	ProductName string   `json:"product_name"`
	Source      string   `json:"source"`
	OldPrice    *float64 `json:"old_price"`
	NewPrice    float64  `json:"new_price"`
}

// TriggeredAlertEvent is published on the TRIGGERED_ALERTS topic when a price
// update satisfies an alert's target.
type TriggeredAlertEvent struct {
	AlertID     uint    `json:"alert_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	TargetPrice float64 `json:"target_price"`
	NewPrice    float64 `json:"new_price"`
}
