package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Load initializes configuration from environment variables and .env file.
func Load() error {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "resellcorner")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("CATALOG_PORT", "8080")
	viper.SetDefault("ALERTS_PORT", "8084")
	viper.SetDefault("NOTIFICATION_PORT", "8082")

	// Marketplace selling fee applied to the sell price (referral + VAT inclusive).
	viper.SetDefault("FEE_RATE", 0.15)

	// Home market used as the arbitrage reference.
	viper.SetDefault("HOME_MARKET", "FR")

	// Exchange rates to EUR. Static defaults, overridable per deployment.
	viper.SetDefault("RATE_GBP_EUR", 1.17)
	viper.SetDefault("RATE_USD_EUR", 0.92)

	// Relative price change between the oldest and newest third of a price
	// history above which the trend is classified as rising/falling.
	viper.SetDefault("TREND_THRESHOLD_PCT", 3.0)

	// Re-comparison cadence for favorited/alerted products.
	viper.SetDefault("REFRESH_CRON", "*/30 * * * *")

	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", "587")

	if err := viper.ReadInConfig(); err != nil {
		logrus.WithError(err).Warn("Failed to read .env file, using environment variables")
	}

	logrus.Info("Configuration loaded successfully")
	return nil
}
