package alerts

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"resellcorner/internal/models"
	"resellcorner/internal/pricing"
)

// jobIDs maps job names to their cron entry IDs for management
var jobIDs = make(map[string]cron.EntryID)

// startScheduler periodically re-compares the products the user is tracking:
// anything referenced by a favorite or an active alert.
func startScheduler(db *gorm.DB, comparer *pricing.Comparer) {
	c := cron.New()

	id, err := c.AddFunc(viper.GetString("REFRESH_CRON"), func() {
		productIDs, err := trackedProductIDs(db)
		if err != nil {
			logrus.WithError(err).Error("Failed to fetch tracked product IDs")
			return
		}
		if len(productIDs) == 0 {
			logrus.Info("No tracked products to refresh")
			return
		}

		logrus.WithField("count", len(productIDs)).Info("Refreshing tracked products")
		success, failed := comparer.CompareMany(context.Background(), productIDs)
		logrus.WithFields(logrus.Fields{
			"success": success,
			"failed":  failed,
		}).Info("Tracked product refresh finished")
	})
	if err != nil {
		logrus.WithError(err).Fatal("Invalid cron expression")
	}

	jobIDs["trackedRefresh"] = id

	c.Start()
	logrus.Info("Scheduler started for tracked product refresh")
}

// trackedProductIDs returns the distinct product IDs referenced by favorites
// or active alerts.
func trackedProductIDs(db *gorm.DB) ([]uint, error) {
	var favoriteIDs []uint
	if err := db.Model(&models.Favorite{}).
		Where("product_id IS NOT NULL").
		Pluck("product_id", &favoriteIDs).Error; err != nil {
		return nil, err
	}

	var alertIDs []uint
	if err := db.Model(&models.Alert{}).
		Where("product_id IS NOT NULL AND is_active = ?", true).
		Pluck("product_id", &alertIDs).Error; err != nil {
		return nil, err
	}

	return lo.Uniq(append(favoriteIDs, alertIDs...)), nil
}
