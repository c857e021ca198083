package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepaTime(t *testing.T) {
	// keepa minute 0 is the epoch offset itself
	assert.Equal(t, time.Unix(keepaMinuteOffset*60, 0).UTC(), keepaTime(0))

	// a known round-trip: 2023-01-01T00:00:00Z
	ref := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	minute := int(ref.Unix()/60) - keepaMinuteOffset
	assert.Equal(t, ref, keepaTime(minute))
}

func TestKeepaProduct_PriceHistory(t *testing.T) {
	product := &KeepaProduct{
		CSV: [][]int{{
			1000, 1999, // 19.99
			2000, -1, // gap, dropped
			3000, 2549, // 25.49
		}},
	}

	history := product.PriceHistory()
	require.Len(t, history, 2)
	assert.Equal(t, 19.99, history[0].Price)
	assert.Equal(t, keepaTime(1000), history[0].Date)
	assert.Equal(t, 25.49, history[1].Price)
	assert.Equal(t, keepaTime(3000), history[1].Date)
}

func TestKeepaProduct_PriceHistoryEmpty(t *testing.T) {
	assert.Nil(t, (&KeepaProduct{}).PriceHistory())
	assert.Empty(t, (&KeepaProduct{CSV: [][]int{{1000, -1}}}).PriceHistory())
}

func TestKeepaProduct_CurrentPrice(t *testing.T) {
	t.Run("prefers live stats", func(t *testing.T) {
		product := &KeepaProduct{
			Stats: &KeepaStats{Current: []int{1299}},
			CSV:   [][]int{{1000, 9999}},
		}
		price := product.CurrentPrice()
		require.NotNil(t, price)
		assert.Equal(t, 12.99, *price)
	})

	t.Run("falls back to last history entry", func(t *testing.T) {
		product := &KeepaProduct{
			Stats: &KeepaStats{Current: []int{-1}},
			CSV:   [][]int{{1000, 1500, 2000, 1899, 3000, -1}},
		}
		price := product.CurrentPrice()
		require.NotNil(t, price)
		assert.Equal(t, 18.99, *price)
	})

	t.Run("falls back to buy box", func(t *testing.T) {
		product := &KeepaProduct{BuyBoxPrice: 4200}
		price := product.CurrentPrice()
		require.NotNil(t, price)
		assert.Equal(t, 42.0, *price)
	})

	t.Run("no data", func(t *testing.T) {
		product := &KeepaProduct{Stats: &KeepaStats{Current: []int{-1}}, BuyBoxPrice: -1}
		assert.Nil(t, product.CurrentPrice())
	})
}
