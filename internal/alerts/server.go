// Package alerts watches the price-update stream, maintains the price log,
// fires alerts whose target price is reached and keeps tracked products fresh
// through a scheduled re-comparison.
package alerts

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
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	port := viper.GetString("ALERTS_PORT")
	logrus.WithField("port", port).Info("Starting Alerts Service")
	go func() {
		if err := e.Start("0.0.0.0:" + port); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Alerts service shutdown")
		}
	}()

	startScheduler(dbConn, comparer)

	kafka.SetupConsumer(kafka.TopicPriceUpdates, handlePriceUpdate(dbConn, producer))
}
