// Package kafka provides producers and consumers for the price-update and
// triggered-alert event streams.
package kafka

import (
	"strings"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Topic names shared by the services.
const (
	TopicPriceUpdates    = "PRICE_UPDATES"
	TopicTriggeredAlerts = "TRIGGERED_ALERTS"
)

func brokerList() []string {
	brokers := strings.Split(viper.GetString("KAFKA_BROKERS"), ",")
	if len(brokers) == 0 || brokers[0] == "" {
		brokers = []string{"localhost:9092"}
	}
	return brokers
}

// SetupProducer initializes a synchronous Kafka producer. It waits for broker
// acknowledgment on every send so a published price update is durable before
// the comparison result is returned to the caller.
func SetupProducer() sarama.SyncProducer {
	brokers := brokerList()

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	// Batch comparisons can publish large multi-market payloads.
	config.Producer.MaxMessageBytes = 5 * 1024 * 1024

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create Kafka producer")
	}

	logrus.WithField("brokers", brokers).Info("Kafka producer initialized")
	return producer
}

// Publish sends a JSON payload to a topic.
func Publish(producer sarama.SyncProducer, topic string, payload []byte) error {
	_, _, err := producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
	})
	return err
}
