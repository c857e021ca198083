package catalog

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"resellcorner/internal/models"
	"resellcorner/internal/pricing"
)

var validate = validator.New()

func registerProductHandlers(e *echo.Echo, db *gorm.DB, comparer *pricing.Comparer) {
	e.GET("/catalog/products", func(c echo.Context) error {
		query := db.Model(&models.Product{})
		query = applyProductFilters(c, query)

		var total int64
		if err := query.Count(&total).Error; err != nil {
			logrus.WithError(err).Error("Failed to count products")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
		}

		skip, _ := strconv.Atoi(c.QueryParam("skip"))
		limit, err := strconv.Atoi(c.QueryParam("limit"))
		if err != nil || limit <= 0 || limit > 500 {
			limit = 100
		}

		var products []models.Product
		if err := query.Order("id").Offset(skip).Limit(limit).Find(&products).Error; err != nil {
			logrus.WithError(err).Error("Failed to list products")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"products": products,
			"total":    total,
			"skip":     skip,
			"limit":    limit,
		})
	})

	e.GET("/catalog/products/:id", func(c echo.Context) error {
		var product models.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		return c.JSON(http.StatusOK, product)
	})

	e.DELETE("/catalog/products", func(c echo.Context) error {
		var req struct {
			ProductIDs []uint `json:"product_ids"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}

		query := db.Model(&models.Product{})
		if len(req.ProductIDs) > 0 {
			query = query.Where("id IN ?", req.ProductIDs)
		} else {
			query = query.Where("1 = 1")
		}
		result := query.Delete(&models.Product{})
		if result.Error != nil {
			logrus.WithError(result.Error).Error("Failed to delete products")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete products"})
		}
		return c.JSON(http.StatusOK, map[string]int64{"deleted": result.RowsAffected})
	})

	e.GET("/catalog/stats", func(c echo.Context) error {
		var stats struct {
			TotalProducts         int64    `json:"total_products"`
			ComparedProducts      int64    `json:"compared_products"`
			TotalPotentialMargin  float64  `json:"total_potential_margin"`
			BestOpportunityMargin *float64 `json:"best_opportunity_margin"`
			Brands                []string `json:"brands"`
			Categories            []string `json:"categories"`
		}

		db.Model(&models.Product{}).Count(&stats.TotalProducts)
		db.Model(&models.Product{}).Where("compared_at IS NOT NULL").Count(&stats.ComparedProducts)
		db.Model(&models.Product{}).Where("margin_eur > 0").
			Select("COALESCE(SUM(margin_eur), 0)").Scan(&stats.TotalPotentialMargin)
		db.Model(&models.Product{}).Select("MAX(margin_eur)").Scan(&stats.BestOpportunityMargin)
		db.Model(&models.Product{}).Where("brand <> ''").Distinct().Order("brand").
			Pluck("brand", &stats.Brands)
		db.Model(&models.Product{}).Where("category <> ''").Distinct().Order("category").
			Pluck("category", &stats.Categories)

		if stats.Brands == nil {
			stats.Brands = []string{}
		}
		if stats.Categories == nil {
			stats.Categories = []string{}
		}
		return c.JSON(http.StatusOK, stats)
	})

	e.GET("/catalog/opportunities", func(c echo.Context) error {
		params := opportunityParams(c)

		query := db.Where("opportunity_score IS NOT NULL AND opportunity_score >= ?", params.MinScore)
		if params.MinMarginPct != nil {
			query = query.Where("margin_pct >= ?", *params.MinMarginPct)
		}

		var products []models.Product
		if err := query.
			Order("opportunity_score DESC, margin_eur DESC").
			Limit(params.Limit).
			Find(&products).Error; err != nil {
			logrus.WithError(err).Error("Failed to list opportunities")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list opportunities"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"opportunities": products})
	})

	e.POST("/catalog/compare/:id", func(c echo.Context) error {
		var product models.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		if err := comparer.Compare(c.Request().Context(), &product); err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Error("Comparison failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Comparison failed"})
		}
		return c.JSON(http.StatusOK, product)
	})

	e.POST("/catalog/compare-batch", func(c echo.Context) error {
		ids, err := bindProductIDs(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if len(ids) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "product_ids is required"})
		}

		success, failed := comparer.CompareMany(c.Request().Context(), ids)
		return c.JSON(http.StatusOK, map[string]int{"success": success, "failed": failed})
	})

	e.POST("/catalog/compare-all", func(c echo.Context) error {
		var ids []uint
		if err := db.Model(&models.Product{}).Order("id").Pluck("id", &ids).Error; err != nil {
			logrus.WithError(err).Error("Failed to list product ids")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
		}

		success, failed := comparer.CompareMany(c.Request().Context(), ids)
		return c.JSON(http.StatusOK, map[string]int{"success": success, "failed": failed})
	})
}

// bindProductIDs reads the selection body of the batch endpoints. Clients
// post either a bare JSON array of product IDs or {"product_ids": [...]}.
func bindProductIDs(body io.Reader) ([]uint, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var ids []uint
	if err := json.Unmarshal(data, &ids); err == nil {
		return ids, nil
	}

	var req struct {
		ProductIDs []uint `json:"product_ids"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return req.ProductIDs, nil
}

// opportunityFilter is the parsed query of /catalog/opportunities.
type opportunityFilter struct {
	MinScore     int
	MinMarginPct *float64
	Limit        int
}

func opportunityParams(c echo.Context) opportunityFilter {
	params := opportunityFilter{}
	params.MinScore, _ = strconv.Atoi(c.QueryParam("min_score"))
	if raw := c.QueryParam("min_margin_percentage"); raw != "" {
		if minPct, err := strconv.ParseFloat(raw, 64); err == nil {
			params.MinMarginPct = &minPct
		}
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 20
	}
	params.Limit = limit
	return params
}

// applyProductFilters translates the catalog list query parameters into
// gorm conditions.
func applyProductFilters(c echo.Context, query *gorm.DB) *gorm.DB {
	if brand := c.QueryParam("brand"); brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR gtin ILIKE ? OR brand ILIKE ?", pattern, pattern, pattern)
	}
	if c.QueryParam("compared_only") == "true" {
		query = query.Where("compared_at IS NOT NULL")
	}
	if raw := c.QueryParam("min_margin"); raw != "" {
		if minMargin, err := strconv.ParseFloat(raw, 64); err == nil {
			query = query.Where("margin_eur >= ?", minMargin)
		}
	}
	if raw := c.QueryParam("min_opportunity_score"); raw != "" {
		if minScore, err := strconv.Atoi(raw); err == nil {
			query = query.Where("opportunity_score >= ?", minScore)
		}
	}
	if level := c.QueryParam("opportunity_level"); level != "" {
		query = query.Where("opportunity_level = ?", level)
	}
	if trend := c.QueryParam("trend"); trend != "" {
		query = query.Where("price_trend->>'trend' = ?", trend)
	}
	return query
}
