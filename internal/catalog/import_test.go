package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resellcorner/internal/engine"
)

func TestInferMapping(t *testing.T) {
	header := []string{
		"EAN", "Product Description", "Brand", "Category",
		"£ Lowest Price inc. shipping", "Image URL",
	}

	mapping := inferMapping(header)

	assert.Equal(t, "EAN", mapping.GTIN)
	assert.Equal(t, "Product Description", mapping.Name)
	assert.Equal(t, "Brand", mapping.Brand)
	assert.Equal(t, "Category", mapping.Category)
	assert.Equal(t, "£ Lowest Price inc. shipping", mapping.SupplierPrice)
	assert.Equal(t, "Image URL", mapping.ImageURL)
	assert.Empty(t, mapping.missingFields())
}

func TestInferMapping_MissingRequiredColumns(t *testing.T) {
	mapping := inferMapping([]string{"Brand", "Notes"})
	assert.Equal(t, []string{"gtin", "name", "supplier_price"}, mapping.missingFields())
}

func TestParseSupplierPrice(t *testing.T) {
	tests := []struct {
		raw      string
		price    float64
		currency string
		ok       bool
	}{
		{"£12.50", 12.50, "GBP", true},
		{"12.50", 12.50, "", true}, // bare numbers carry no currency
		{"€9.99", 9.99, "EUR", true},
		{"$20", 20, "USD", true},
		{"12,50", 12.50, "", true},
		{"1,299.99", 1299.99, "", true},
		{"£1,299.99", 1299.99, "GBP", true},
		{"1.299,99", 1299.99, "", true},
		{"1,234,567", 1234567, "", true},
		{"", 0, "", false},
		{"n/a", 0, "", false},
		{"-5", 0, "", false},
		{"0", 0, "", false},
	}

	for _, tt := range tests {
		price, currency, ok := parseSupplierPrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.price, price, "raw=%q", tt.raw)
			assert.Equal(t, tt.currency, currency, "raw=%q", tt.raw)
		}
	}
}

func TestProductFromRow(t *testing.T) {
	converter := engine.NewConverter(map[string]float64{"GBP": 1.17, "USD": 0.92})
	header := []string{"EAN", "Name", "Price", "Brand"}
	mapping := &columnMapping{GTIN: "EAN", Name: "Name", SupplierPrice: "Price", Brand: "Brand"}
	index := columnIndex(header)

	product, ok := productFromRow([]string{"5000112345678", "Widget", "£10.00", "Acme"}, index, mapping, converter)
	require.True(t, ok)
	assert.Equal(t, "5000112345678", product.GTIN)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "Acme", product.Brand)
	assert.Equal(t, 10.0, product.SupplierPrice)
	assert.Equal(t, "GBP", product.SupplierCurrency)
	assert.Equal(t, 11.7, product.SupplierPriceEUR)
}

func TestProductFromRow_Rejections(t *testing.T) {
	converter := engine.NewConverter(nil)
	header := []string{"EAN", "Name", "Price"}
	mapping := &columnMapping{GTIN: "EAN", Name: "Name", SupplierPrice: "Price"}
	index := columnIndex(header)

	tests := []struct {
		name string
		row  []string
	}{
		{"missing gtin", []string{"", "Widget", "10"}},
		{"missing name", []string{"5000112345678", "", "10"}},
		{"bad price", []string{"5000112345678", "Widget", "soon"}},
		{"short row", []string{"5000112345678"}},
		{"unsupported currency", []string{"5000112345678", "Widget", "10"}}, // GBP not in rate table
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := productFromRow(tt.row, index, mapping, converter)
			assert.False(t, ok)
		})
	}
}

func TestProductFromRowDefaultCurrency(t *testing.T) {
	converter := engine.NewConverter(map[string]float64{"GBP": 1.17})

	// a bare number under a generic price header is a sterling quote
	header := []string{"EAN", "Name", "Price"}
	mapping := &columnMapping{GTIN: "EAN", Name: "Name", SupplierPrice: "Price"}
	product, ok := productFromRow([]string{"5000112345678", "Widget", "10.00"}, columnIndex(header), mapping, converter)
	require.True(t, ok)
	assert.Equal(t, "GBP", product.SupplierCurrency)
	assert.Equal(t, 11.7, product.SupplierPriceEUR)

	// the same number under an EUR-denominated header stays EUR
	header = []string{"EAN", "Name", "supplier_price_eur"}
	mapping = &columnMapping{GTIN: "EAN", Name: "Name", SupplierPrice: "supplier_price_eur"}
	product, ok = productFromRow([]string{"5000112345678", "Widget", "10.00"}, columnIndex(header), mapping, converter)
	require.True(t, ok)
	assert.Equal(t, "EUR", product.SupplierCurrency)
	assert.Equal(t, 10.0, product.SupplierPriceEUR)
}

func TestExportReimportRoundTrip(t *testing.T) {
	converter := engine.NewConverter(map[string]float64{"GBP": 1.17, "USD": 0.92})

	// the header written by /catalog/export
	header := []string{
		"gtin", "name", "brand", "category",
		"supplier_price", "supplier_currency",
		"supplier_price_eur", "amazon_price_eur", "google_lowest_price_eur",
		"margin_eur", "margin_percentage", "cheapest_source",
		"opportunity_score", "opportunity_level",
	}
	mapping := inferMapping(header)
	assert.Equal(t, "gtin", mapping.GTIN)
	assert.Equal(t, "supplier_price", mapping.SupplierPrice)
	assert.Equal(t, "supplier_currency", mapping.Currency)
	index := columnIndex(header)

	tests := []struct {
		name     string
		row      []string
		currency string
		priceEUR float64
	}{
		{
			"eur quote",
			[]string{"4006381333931", "Pen", "Stabilo", "Office",
				"100.00", "EUR", "100.00", "", "", "", "", "", "", ""},
			"EUR", 100.0,
		},
		{
			"gbp quote",
			[]string{"5000112345678", "Widget", "Acme", "Toys",
				"10.00", "GBP", "11.70", "", "", "", "", "", "", ""},
			"GBP", 11.7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, ok := productFromRow(tt.row, index, &mapping, converter)
			require.True(t, ok)
			assert.Equal(t, tt.currency, product.SupplierCurrency)
			assert.Equal(t, tt.priceEUR, product.SupplierPriceEUR)
		})
	}
}

func TestColumnMappingExplicitCurrency(t *testing.T) {
	converter := engine.NewConverter(map[string]float64{"USD": 0.92})
	header := []string{"EAN", "Name", "Price", "Currency"}
	mapping := &columnMapping{GTIN: "EAN", Name: "Name", SupplierPrice: "Price", Currency: "Currency"}
	index := columnIndex(header)

	product, ok := productFromRow([]string{"5000112345678", "Widget", "100", "usd"}, index, mapping, converter)
	require.True(t, ok)
	assert.Equal(t, "USD", product.SupplierCurrency)
	assert.Equal(t, 92.0, product.SupplierPriceEUR)
}
