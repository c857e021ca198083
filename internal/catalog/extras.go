package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"resellcorner/internal/models"
	"resellcorner/internal/pricing"
)

// registerExtraHandlers wires the sourcing endpoints around the catalog:
// suppliers, favorites, alerts, dashboard stats and text search.
func registerExtraHandlers(e *echo.Echo, db *gorm.DB) {
	registerSupplierHandlers(e, db)
	registerFavoriteHandlers(e, db)
	registerAlertHandlers(e, db)

	e.GET("/dashboard/stats", func(c echo.Context) error {
		var suppliersCount, alertsCount, favoritesCount, searchesCount int64
		db.Model(&models.Supplier{}).Count(&suppliersCount)
		db.Model(&models.Alert{}).Where("is_active = ?", true).Count(&alertsCount)
		db.Model(&models.Favorite{}).Count(&favoritesCount)
		db.Model(&models.SearchHistory{}).Count(&searchesCount)

		var recent []models.SearchHistory
		db.Order("created_at DESC").Limit(5).Find(&recent)

		return c.JSON(http.StatusOK, map[string]interface{}{
			"suppliers_count":     suppliersCount,
			"active_alerts_count": alertsCount,
			"favorites_count":     favoritesCount,
			"total_searches":      searchesCount,
			"recent_searches":     recent,
		})
	})

	e.GET("/history/searches", func(c echo.Context) error {
		limit, err := strconv.Atoi(c.QueryParam("limit"))
		if err != nil || limit <= 0 || limit > 500 {
			limit = 50
		}

		var history []models.SearchHistory
		if err := db.Order("created_at DESC").Limit(limit).Find(&history).Error; err != nil {
			logrus.WithError(err).Error("Failed to list search history")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list search history"})
		}
		if history == nil {
			history = []models.SearchHistory{}
		}
		return c.JSON(http.StatusOK, history)
	})

	e.GET("/history/price/:product_id", func(c echo.Context) error {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product id"})
		}

		var logs []models.PriceLog
		if err := db.Where("product_id = ?", productID).
			Order("change_time").Find(&logs).Error; err != nil {
			logrus.WithError(err).WithField("product_id", productID).Error("Failed to list price history")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list price history"})
		}

		return c.JSON(http.StatusOK, priceHistoryPayload(productID, logs))
	})

	e.POST("/search/text", func(c echo.Context) error {
		var req struct {
			Query string `json:"query" validate:"required"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
		}

		var settings models.Settings
		if err := db.First(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to load settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load settings"})
		}
		searcher := pricing.SearcherFor(&settings)
		if searcher == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No search provider configured"})
		}

		result, err := searcher.SearchPrices(c.Request().Context(), req.Query)
		if err != nil {
			logrus.WithError(err).WithField("query", req.Query).Error("Text search failed")
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Search provider error"})
		}

		db.Create(&models.SearchHistory{
			Query:        req.Query,
			SearchType:   "text",
			ResultsCount: len(result.Offers),
			LowestPrice:  result.LowestPrice,
		})

		prices := lo.Map(result.Offers, func(o pricing.WebOffer, _ int) float64 { return o.Price })
		response := map[string]interface{}{
			"product_name":  req.Query,
			"comparisons":   result.Offers,
			"results_count": len(result.Offers),
			"lowest_price":  result.LowestPrice,
			"highest_price": nil,
			"average_price": nil,
		}
		if len(prices) > 0 {
			response["highest_price"] = lo.Max(prices)
			response["average_price"] = lo.Sum(prices) / float64(len(prices))
		}
		return c.JSON(http.StatusOK, response)
	})
}

func registerSupplierHandlers(e *echo.Echo, db *gorm.DB) {
	e.GET("/suppliers", func(c echo.Context) error {
		var suppliers []models.Supplier
		if err := db.Order("name").Find(&suppliers).Error; err != nil {
			logrus.WithError(err).Error("Failed to list suppliers")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list suppliers"})
		}
		return c.JSON(http.StatusOK, suppliers)
	})

	e.POST("/suppliers", func(c echo.Context) error {
		var req struct {
			Name     string `json:"name" validate:"required"`
			URL      string `json:"url"`
			LogoURL  string `json:"logo_url"`
			Category string `json:"category"`
			Notes    string `json:"notes"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
		}

		supplier := models.Supplier{
			Name:     req.Name,
			URL:      req.URL,
			LogoURL:  req.LogoURL,
			Category: req.Category,
			Notes:    req.Notes,
		}
		if err := db.Create(&supplier).Error; err != nil {
			logrus.WithError(err).Error("Failed to create supplier")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create supplier"})
		}
		return c.JSON(http.StatusCreated, supplier)
	})

	e.PUT("/suppliers/:id", func(c echo.Context) error {
		var supplier models.Supplier
		if err := db.First(&supplier, c.Param("id")).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Supplier not found"})
		}
		if err := c.Bind(&supplier); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := db.Save(&supplier).Error; err != nil {
			logrus.WithError(err).Error("Failed to update supplier")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update supplier"})
		}
		return c.JSON(http.StatusOK, supplier)
	})

	e.DELETE("/suppliers/:id", func(c echo.Context) error {
		if err := db.Delete(&models.Supplier{}, c.Param("id")).Error; err != nil {
			logrus.WithError(err).Error("Failed to delete supplier")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete supplier"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	})
}

func registerFavoriteHandlers(e *echo.Echo, db *gorm.DB) {
	e.GET("/favorites", func(c echo.Context) error {
		var favorites []models.Favorite
		if err := db.Order("created_at DESC").Find(&favorites).Error; err != nil {
			logrus.WithError(err).Error("Failed to list favorites")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list favorites"})
		}
		return c.JSON(http.StatusOK, favorites)
	})

	e.POST("/favorites", func(c echo.Context) error {
		var req struct {
			ProductID   *uint  `json:"product_id"`
			ProductName string `json:"product_name" validate:"required"`
			ProductURL  string `json:"product_url"`
			ImageURL    string `json:"image_url"`
			Notes       string `json:"notes"`
			SearchQuery string `json:"search_query"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "product_name is required"})
		}

		if req.ProductID != nil {
			var product models.Product
			if err := db.First(&product, *req.ProductID).Error; err != nil {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
			}
		}

		favorite := models.Favorite{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			ProductURL:  req.ProductURL,
			ImageURL:    req.ImageURL,
			Notes:       req.Notes,
			SearchQuery: req.SearchQuery,
		}
		if err := db.Create(&favorite).Error; err != nil {
			logrus.WithError(err).Error("Failed to create favorite")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create favorite"})
		}
		return c.JSON(http.StatusCreated, favorite)
	})

	e.DELETE("/favorites/:id", func(c echo.Context) error {
		if err := db.Delete(&models.Favorite{}, c.Param("id")).Error; err != nil {
			logrus.WithError(err).Error("Failed to delete favorite")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete favorite"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	})
}

func registerAlertHandlers(e *echo.Echo, db *gorm.DB) {
	e.GET("/alerts", func(c echo.Context) error {
		var alerts []models.Alert
		if err := db.Order("created_at DESC").Find(&alerts).Error; err != nil {
			logrus.WithError(err).Error("Failed to list alerts")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list alerts"})
		}
		return c.JSON(http.StatusOK, alerts)
	})

	e.POST("/alerts", func(c echo.Context) error {
		var req struct {
			ProductID   *uint   `json:"product_id"`
			ProductName string  `json:"product_name" validate:"required"`
			ProductURL  string  `json:"product_url"`
			TargetPrice float64 `json:"target_price" validate:"required,gt=0"`
			SupplierID  *uint   `json:"supplier_id"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "product_name and a positive target_price are required"})
		}

		alert := models.Alert{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			ProductURL:  req.ProductURL,
			TargetPrice: req.TargetPrice,
			SupplierID:  req.SupplierID,
			IsActive:    true,
		}
		if req.ProductID != nil {
			var product models.Product
			if err := db.First(&product, *req.ProductID).Error; err == nil {
				alert.CurrentPrice = product.BestPriceEUR
			}
		}
		if err := db.Create(&alert).Error; err != nil {
			logrus.WithError(err).Error("Failed to create alert")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create alert"})
		}
		return c.JSON(http.StatusCreated, alert)
	})

	e.PUT("/alerts/:id/toggle", func(c echo.Context) error {
		var alert models.Alert
		if err := db.First(&alert, c.Param("id")).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Alert not found"})
		}
		alert.IsActive = !alert.IsActive
		if alert.IsActive {
			alert.Triggered = false
		}
		if err := db.Save(&alert).Error; err != nil {
			logrus.WithError(err).Error("Failed to toggle alert")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to toggle alert"})
		}
		return c.JSON(http.StatusOK, alert)
	})

	e.DELETE("/alerts/:id", func(c echo.Context) error {
		if err := db.Delete(&models.Alert{}, c.Param("id")).Error; err != nil {
			logrus.WithError(err).Error("Failed to delete alert")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete alert"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	})
}

// priceHistoryPayload shapes the recorded price changes of one product into
// the history response: one {date, price, source} entry per change, in the
// order the changes were observed.
func priceHistoryPayload(productID int, logs []models.PriceLog) map[string]interface{} {
	history := lo.Map(logs, func(l models.PriceLog, _ int) map[string]interface{} {
		return map[string]interface{}{
			"date":   l.ChangeTime,
			"price":  l.NewPrice,
			"source": l.Source,
		}
	})
	if history == nil {
		history = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"product_id": productID,
		"history":    history,
	}
}
