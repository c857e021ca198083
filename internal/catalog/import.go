package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resellcorner/internal/engine"
	"resellcorner/internal/models"
)

// columnMapping binds catalog fields to CSV column headers. GTIN, name and
// price are mandatory; the rest is optional.
type columnMapping struct {
	GTIN          string `json:"gtin"`
	Name          string `json:"name"`
	SupplierPrice string `json:"supplier_price"`
	Brand         string `json:"brand,omitempty"`
	Category      string `json:"category,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// missingFields lists the required mappings that are absent, for the
// pre-import validation error.
func (m *columnMapping) missingFields() []string {
	var missing []string
	if m.GTIN == "" {
		missing = append(missing, "gtin")
	}
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.SupplierPrice == "" {
		missing = append(missing, "supplier_price")
	}
	return missing
}

func registerImportHandlers(e *echo.Echo, db *gorm.DB) {
	converter := engine.NewConverter(map[string]float64{
		"GBP": viper.GetFloat64("RATE_GBP_EUR"),
		"USD": viper.GetFloat64("RATE_USD_EUR"),
	})

	e.POST("/catalog/preview", func(c echo.Context) error {
		header, rows, err := readUpload(c, 6)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"columns":           header,
			"rows":              rows,
			"suggested_mapping": inferMapping(header),
		})
	})

	e.POST("/catalog/import", func(c echo.Context) error {
		var mapping columnMapping
		if raw := c.FormValue("column_mapping_json"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid column mapping"})
			}
		}

		header, rows, err := readUpload(c, 0)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if mapping == (columnMapping{}) {
			mapping = inferMapping(header)
		}
		if missing := mapping.missingFields(); len(missing) > 0 {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":          "Invalid column mapping",
				"missing_fields": missing,
			})
		}

		index := columnIndex(header)
		imported, skipped := 0, 0
		for _, row := range rows {
			product, ok := productFromRow(row, index, &mapping, converter)
			if !ok {
				skipped++
				continue
			}

			// duplicate GTINs are skipped, not updated
			result := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "gtin"}},
				DoNothing: true,
			}).Create(product)
			if result.Error != nil {
				logrus.WithError(result.Error).WithField("gtin", product.GTIN).Error("Failed to insert product")
				skipped++
				continue
			}
			if result.RowsAffected == 0 {
				skipped++
				continue
			}
			imported++
		}

		logrus.WithFields(logrus.Fields{
			"imported": imported,
			"skipped":  skipped,
		}).Info("Catalog import finished")
		return c.JSON(http.StatusOK, map[string]int{"imported": imported, "skipped": skipped})
	})

	e.GET("/catalog/export", func(c echo.Context) error {
		query := db.Model(&models.Product{}).Order("id")
		if c.QueryParam("compared_only") == "true" {
			query = query.Where("compared_at IS NOT NULL")
		}

		var products []models.Product
		if err := query.Find(&products).Error; err != nil {
			logrus.WithError(err).Error("Failed to export products")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Export failed"})
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="catalog_export.csv"`)
		c.Response().WriteHeader(http.StatusOK)

		// supplier_price + supplier_currency come first so a re-import maps
		// onto the raw quote and reproduces the same EUR rows
		w := csv.NewWriter(c.Response())
		w.Write([]string{
			"gtin", "name", "brand", "category",
			"supplier_price", "supplier_currency",
			"supplier_price_eur", "amazon_price_eur", "google_lowest_price_eur",
			"margin_eur", "margin_percentage", "cheapest_source",
			"opportunity_score", "opportunity_level",
		})
		for _, p := range products {
			w.Write([]string{
				p.GTIN, p.Name, p.Brand, p.Category,
				formatFloat(&p.SupplierPrice),
				p.SupplierCurrency,
				formatFloat(&p.SupplierPriceEUR),
				formatFloat(p.AmazonPriceEUR),
				formatFloat(p.GoogleLowestPriceEUR),
				formatFloat(p.MarginEUR),
				formatFloat(p.MarginPct),
				p.CheapestSource,
				formatInt(p.OpportunityScore),
				p.OpportunityLevel,
			})
		}
		w.Flush()
		return nil
	})
}

// readUpload parses the multipart CSV file. maxRows limits the returned data
// rows; 0 means all.
func readUpload(c echo.Context, maxRows int) ([]string, [][]string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("missing file upload")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("unreadable file upload")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("empty or invalid CSV file")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for maxRows == 0 || len(rows) < maxRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// inferMapping guesses the column mapping from header names, matching the
// supplier export formats seen in the wild ("EAN", "£ Lowest Price inc.
// shipping", ...).
func inferMapping(header []string) columnMapping {
	var mapping columnMapping
	for _, column := range header {
		lower := strings.ToLower(column)
		switch {
		case mapping.GTIN == "" && (strings.Contains(lower, "gtin") || strings.Contains(lower, "ean") ||
			strings.Contains(lower, "upc") || strings.Contains(lower, "barcode")):
			mapping.GTIN = column
		case mapping.SupplierPrice == "" && strings.Contains(lower, "price"):
			mapping.SupplierPrice = column
		case mapping.Name == "" && (strings.Contains(lower, "name") || strings.Contains(lower, "title") ||
			strings.Contains(lower, "product") || strings.Contains(lower, "description")):
			mapping.Name = column
		case mapping.Brand == "" && strings.Contains(lower, "brand"):
			mapping.Brand = column
		case mapping.Category == "" && strings.Contains(lower, "categor"):
			mapping.Category = column
		case mapping.ImageURL == "" && strings.Contains(lower, "image"):
			mapping.ImageURL = column
		case mapping.Currency == "" && strings.Contains(lower, "currency"):
			mapping.Currency = column
		}
	}
	return mapping
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, column := range header {
		index[column] = i
	}
	return index
}

// productFromRow builds a catalog product from one CSV row. Rows without a
// GTIN or a parseable price are rejected.
func productFromRow(row []string, index map[string]int, mapping *columnMapping, converter *engine.Converter) (*models.Product, bool) {
	cell := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	gtin := cell(mapping.GTIN)
	name := cell(mapping.Name)
	if gtin == "" || name == "" {
		return nil, false
	}

	rawPrice := cell(mapping.SupplierPrice)
	price, currency, ok := parseSupplierPrice(rawPrice)
	if !ok {
		return nil, false
	}
	if mapped := cell(mapping.Currency); mapped != "" {
		currency = strings.ToUpper(mapped)
	}
	if currency == "" {
		// no symbol and no currency column: an EUR-denominated column keeps
		// its value, anything else is the sterling supplier export default
		if strings.Contains(strings.ToLower(mapping.SupplierPrice), "eur") {
			currency = "EUR"
		} else {
			currency = "GBP"
		}
	}

	priceEUR, err := converter.Normalize(price, currency)
	if err != nil {
		return nil, false
	}

	return &models.Product{
		GTIN:             gtin,
		Name:             name,
		Brand:            cell(mapping.Brand),
		Category:         cell(mapping.Category),
		ImageURL:         cell(mapping.ImageURL),
		SupplierPrice:    price,
		SupplierCurrency: currency,
		SupplierPriceEUR: priceEUR,
	}, true
}

// parseSupplierPrice reads a price cell, detecting the currency from a
// leading symbol. The returned currency is empty for bare numbers; the
// caller decides the default.
func parseSupplierPrice(raw string) (float64, string, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, "", false
	}

	currency := ""
	switch {
	case strings.HasPrefix(cleaned, "£"):
		currency = "GBP"
	case strings.HasPrefix(cleaned, "€"):
		currency = "EUR"
	case strings.HasPrefix(cleaned, "$"):
		currency = "USD"
	}
	cleaned = strings.TrimLeft(cleaned, "£€$ ")
	cleaned = normalizeDecimal(cleaned)

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 || math.IsNaN(price) {
		return 0, "", false
	}
	return price, currency, true
}

// normalizeDecimal reduces localized number formats to a plain decimal:
// "1,299.99" and "1.299,99" both become "1299.99", a lone comma is a decimal
// comma ("12,99"), repeated commas are thousands separators ("1,234,567").
func normalizeDecimal(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastDot > lastComma:
		// dot is the decimal separator, commas group thousands
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && lastDot >= 0:
		// comma is the decimal separator, dots group thousands
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case strings.Count(s, ",") > 1:
		return strings.ReplaceAll(s, ",", "")
	default:
		return strings.ReplaceAll(s, ",", ".")
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
