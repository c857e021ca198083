package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"12.99", 12.99, true},
		{"12,99", 12.99, true},
		{"€12.99", 12.99, true},
		{"£9.50", 9.5, true},
		{"12.99 EUR", 12.99, true},
		{" 45 ", 45, true},
		{"", 0, false},
		{"free", 0, false},
		{"-3.50", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		}
	}
}

func TestSummarize(t *testing.T) {
	offers := []WebOffer{
		{Seller: "shop-a.fr", Price: 24.99},
		{Seller: "shop-b.fr", Price: 19.99},
		{Seller: "shop-a.fr", Price: 22.00}, // same seller, second listing
	}

	result := summarize(offers)
	require.NotNil(t, result.LowestPrice)
	assert.Equal(t, 19.99, *result.LowestPrice)
	// distinct sellers, not listings
	assert.Equal(t, 2, result.OfferCount)
}

func TestSummarize_NoOffers(t *testing.T) {
	result := summarize(nil)
	assert.Nil(t, result.LowestPrice)
	assert.Equal(t, 0, result.OfferCount)
}
