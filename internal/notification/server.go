// Package notification delivers triggered price alerts by email.
package notification

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"resellcorner/internal/kafka"
	"resellcorner/internal/models"
)

func Start() {
	emailService := NewEmailService()

	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	port := viper.GetString("NOTIFICATION_PORT")
	logrus.WithField("port", port).Info("Starting Notification Service")
	go func() {
		if err := e.Start("0.0.0.0:" + port); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Notification service shutdown")
		}
	}()

	kafka.SetupConsumer(kafka.TopicTriggeredAlerts, func(data []byte) {
		var event models.TriggeredAlertEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logrus.WithError(err).Error("Error unmarshaling triggered alert")
			return
		}

		logrus.WithFields(logrus.Fields{
			"alert_id":   event.AlertID,
			"product_id": event.ProductID,
		}).Info("Triggered alert received")

		if err := emailService.SendAlertEmail(event); err != nil {
			logrus.WithError(err).WithField("alert_id", event.AlertID).Error("Failed to send alert email")
		}
	})
}
