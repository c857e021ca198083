package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"resellcorner/internal/models"
)

// apiKeyStatus is the read shape of the settings: booleans only, the stored
// secrets never leave the service.
type apiKeyStatus struct {
	GoogleAPIKeySet         bool   `json:"google_api_key_set"`
	GoogleSearchEngineIDSet bool   `json:"google_search_engine_id_set"`
	KeepaAPIKeySet          bool   `json:"keepa_api_key_set"`
	DataForSEOLoginSet      bool   `json:"dataforseo_login_set"`
	GoogleSearchMode        string `json:"google_search_mode"`
}

func statusOf(settings *models.Settings) apiKeyStatus {
	return apiKeyStatus{
		GoogleAPIKeySet:         settings.GoogleAPIKey != "",
		GoogleSearchEngineIDSet: settings.GoogleSearchEngineID != "",
		KeepaAPIKeySet:          settings.KeepaAPIKey != "",
		DataForSEOLoginSet:      settings.DataForSEOLogin != "",
		GoogleSearchMode:        settings.GoogleSearchMode,
	}
}

func registerSettingsHandlers(e *echo.Echo, db *gorm.DB) {
	e.GET("/settings/api-keys", func(c echo.Context) error {
		var settings models.Settings
		if err := db.First(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to load settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load settings"})
		}
		return c.JSON(http.StatusOK, statusOf(&settings))
	})

	e.PUT("/settings/api-keys", func(c echo.Context) error {
		// nil leaves a key untouched, "" clears it
		var req struct {
			GoogleAPIKey         *string `json:"google_api_key"`
			GoogleSearchEngineID *string `json:"google_search_engine_id"`
			KeepaAPIKey          *string `json:"keepa_api_key"`
			DataForSEOLogin      *string `json:"dataforseo_login"`
			DataForSEOPassword   *string `json:"dataforseo_password"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}

		var settings models.Settings
		if err := db.First(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to load settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load settings"})
		}

		if req.GoogleAPIKey != nil {
			settings.GoogleAPIKey = *req.GoogleAPIKey
		}
		if req.GoogleSearchEngineID != nil {
			settings.GoogleSearchEngineID = *req.GoogleSearchEngineID
		}
		if req.KeepaAPIKey != nil {
			settings.KeepaAPIKey = *req.KeepaAPIKey
		}
		if req.DataForSEOLogin != nil {
			settings.DataForSEOLogin = *req.DataForSEOLogin
		}
		if req.DataForSEOPassword != nil {
			settings.DataForSEOPassword = *req.DataForSEOPassword
		}

		if err := db.Save(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to save settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save settings"})
		}
		return c.JSON(http.StatusOK, statusOf(&settings))
	})

	e.PUT("/settings/google-search-mode", func(c echo.Context) error {
		var req struct {
			Mode string `json:"mode" validate:"required,oneof=custom_search dataforseo"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "mode must be custom_search or dataforseo"})
		}

		var settings models.Settings
		if err := db.First(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to load settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load settings"})
		}
		settings.GoogleSearchMode = req.Mode
		if err := db.Save(&settings).Error; err != nil {
			logrus.WithError(err).Error("Failed to save settings")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save settings"})
		}
		return c.JSON(http.StatusOK, statusOf(&settings))
	})
}
