// Package catalog implements the catalog REST service: product import,
// comparison endpoints, stats, settings and the sourcing extras (suppliers,
// favorites, alerts, text search).
package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"resellcorner/internal/db"
	"resellcorner/internal/kafka"
	"resellcorner/internal/pricing"
)

func Start() {
	dbConn := db.Setup()
	producer := kafka.SetupProducer()
	comparer := pricing.NewComparer(dbConn, producer)

	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	registerProductHandlers(e, dbConn, comparer)
	registerImportHandlers(e, dbConn)
	registerSettingsHandlers(e, dbConn)
	registerExtraHandlers(e, dbConn)

	port := viper.GetString("CATALOG_PORT")
	logrus.WithField("port", port).Info("Starting Catalog Service")
	if err := e.Start("0.0.0.0:" + port); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("Catalog service shutdown")
	}
}
