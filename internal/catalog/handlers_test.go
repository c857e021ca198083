package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindProductIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		ids  []uint
	}{
		{"bare array", `[1, 2, 3]`, []uint{1, 2, 3}},
		{"object form", `{"product_ids": [4, 5]}`, []uint{4, 5}},
		{"empty array", `[]`, []uint{}},
		{"empty object", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := bindProductIDs(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Len(t, ids, len(tt.ids))
			for i, id := range tt.ids {
				assert.Equal(t, id, ids[i])
			}
		})
	}
}

func TestBindProductIDs_InvalidBody(t *testing.T) {
	_, err := bindProductIDs(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestOpportunityParams(t *testing.T) {
	params := opportunityParams(queryContext(t, "min_score=60&min_margin_percentage=25.5&limit=10"))
	assert.Equal(t, 60, params.MinScore)
	require.NotNil(t, params.MinMarginPct)
	assert.Equal(t, 25.5, *params.MinMarginPct)
	assert.Equal(t, 10, params.Limit)
}

func TestOpportunityParams_Defaults(t *testing.T) {
	params := opportunityParams(queryContext(t, ""))
	assert.Equal(t, 0, params.MinScore)
	assert.Nil(t, params.MinMarginPct)
	assert.Equal(t, 20, params.Limit)

	params = opportunityParams(queryContext(t, "limit=9999&min_margin_percentage=abc"))
	assert.Equal(t, 20, params.Limit)
	assert.Nil(t, params.MinMarginPct)
}

func queryContext(t *testing.T, rawQuery string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/catalog/opportunities?"+rawQuery, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}
