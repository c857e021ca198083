package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resellcorner/internal/models"
)

func TestPriceHistoryPayload(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 3)
	logs := []models.PriceLog{
		{ProductID: 7, Source: "amazon", OldPrice: 24.99, NewPrice: 22.49, ChangeTime: day1},
		{ProductID: 7, Source: "google", OldPrice: 23.00, NewPrice: 21.90, ChangeTime: day2},
	}

	payload := priceHistoryPayload(7, logs)
	assert.Equal(t, 7, payload["product_id"])

	history, ok := payload["history"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, history, 2)
	assert.Equal(t, day1, history[0]["date"])
	assert.Equal(t, 22.49, history[0]["price"])
	assert.Equal(t, "amazon", history[0]["source"])
	assert.Equal(t, "google", history[1]["source"])
}

func TestPriceHistoryPayload_Empty(t *testing.T) {
	payload := priceHistoryPayload(3, nil)
	assert.Equal(t, 3, payload["product_id"])
	history, ok := payload["history"].([]map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, history)
}
