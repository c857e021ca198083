package alerts

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"resellcorner/internal/kafka"
	"resellcorner/internal/models"
)

// handlePriceUpdate consumes one price-update event: it records the change in
// the price log, refreshes the tracked price on matching alerts and fires the
// ones whose target has been reached.
func handlePriceUpdate(db *gorm.DB, producer sarama.SyncProducer) func([]byte) {
	return func(data []byte) {
		var event models.PriceUpdateEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logrus.WithError(err).Error("Error unmarshaling price update")
			return
		}

		logrus.WithFields(logrus.Fields{
			"product_id": event.ProductID,
			"new_price":  event.NewPrice,
		}).Info("Price update received")

		oldPrice := 0.0
		if event.OldPrice != nil {
			oldPrice = *event.OldPrice
		}
		db.Create(&models.PriceLog{
			ProductID:  event.ProductID,
			Source:     event.Source,
			OldPrice:   oldPrice,
			NewPrice:   event.NewPrice,
			ChangeTime: time.Now(),
		})

		var alerts []models.Alert
		if err := db.Where("product_id = ? AND is_active = ? AND triggered = ?",
			event.ProductID, true, false).Find(&alerts).Error; err != nil {
			logrus.WithError(err).WithField("product_id", event.ProductID).Error("Error finding alerts")
			return
		}

		for _, alert := range alerts {
			alert.CurrentPrice = &event.NewPrice
			if event.NewPrice > alert.TargetPrice {
				db.Save(&alert)
				continue
			}

			alert.Triggered = true
			if err := db.Save(&alert).Error; err != nil {
				logrus.WithError(err).WithField("alert_id", alert.ID).Error("Error updating alert")
				continue
			}

			logrus.WithFields(logrus.Fields{
				"alert_id":     alert.ID,
				"target_price": alert.TargetPrice,
				"new_price":    event.NewPrice,
			}).Info("Alert triggered")

			payload, err := json.Marshal(models.TriggeredAlertEvent{
				AlertID:     alert.ID,
				ProductID:   event.ProductID,
				ProductName: alert.ProductName,
				TargetPrice: alert.TargetPrice,
				NewPrice:    event.NewPrice,
			})
			if err != nil {
				continue
			}
			if err := kafka.Publish(producer, kafka.TopicTriggeredAlerts, payload); err != nil {
				logrus.WithError(err).WithField("alert_id", alert.ID).Error("Failed to publish triggered alert")
			}
		}
	}
}
