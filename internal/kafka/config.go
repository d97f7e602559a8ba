package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/clublaunch/payments-service/pkg/logger"
)

// Config конфигурация для Kafka
type Config struct {
	Brokers  []string
	Producer ProducerConfig
}

// ProducerConfig конфигурация для продюсера
type ProducerConfig struct {
	MaxMessageBytes  int
	Compression      sarama.CompressionCodec
	RequiredAcks     sarama.RequiredAcks
	FlushMaxMessages int
}

// NewConfig создает новую конфигурацию Kafka
func NewConfig(brokers []string) *Config {
	return &Config{
		Brokers: brokers,
		Producer: ProducerConfig{
			MaxMessageBytes:  1000000,
			Compression:      sarama.CompressionSnappy,
			RequiredAcks:     sarama.WaitForAll,
			FlushMaxMessages: 100,
		},
	}
}

// NewSyncProducer создает синхронный продюсер Kafka
func NewSyncProducer(cfg *Config, log *logger.Logger) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaCfg.Producer.Compression = cfg.Producer.Compression
	saramaCfg.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaCfg.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		log.Errorw("Failed to create Kafka producer", "error", err, "brokers", cfg.Brokers)
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Infow("Kafka producer initialized", "brokers", cfg.Brokers)
	return producer, nil
}
