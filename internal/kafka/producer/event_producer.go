package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const (
	TopicPaymentRecorded = "payment.recorded"
	TopicClubWelcome     = "club.welcome"
)

// PaymentRecordedEvent событие о зафиксированном платеже для Kafka
type PaymentRecordedEvent struct {
	ID              string             `json:"id"`
	ClubID          string             `json:"club_id"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	PaymentType     domain.PaymentType `json:"payment_type"`
	PaymentIntentID string             `json:"payment_intent_id"`
	PlatformFee     float64            `json:"platform_fee"`
	ClubEarnings    float64            `json:"club_earnings"`
	Timestamp       time.Time          `json:"timestamp"`
}

// ClubWelcomeEvent событие завершения онбординга клуба.
// Консьюмер нотификаций отправляет по нему приветственное письмо.
type ClubWelcomeEvent struct {
	ClubID          string    `json:"club_id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	StripeAccountID string    `json:"stripe_account_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventProducer интерфейс для отправки доменных событий
type EventProducer interface {
	// PublishPaymentRecorded публикует событие о зафиксированном платеже
	PublishPaymentRecorded(ctx context.Context, payment domain.Payment) error

	// PublishClubWelcome публикует событие завершения онбординга клуба.
	// Вызывается не более одного раза на клуб.
	PublishClubWelcome(ctx context.Context, club domain.Club) error

	Close() error
}

type kafkaEventProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaEventProducer создает новый продюсер доменных событий
func NewKafkaEventProducer(producer sarama.SyncProducer, log *logger.Logger) EventProducer {
	return &kafkaEventProducer{
		producer: producer,
		log:      log,
	}
}

// PublishPaymentRecorded публикует событие о зафиксированном платеже.
// Ключ — payment_intent_id: повторы того же платежа попадают в одну партицию.
func (p *kafkaEventProducer) PublishPaymentRecorded(ctx context.Context, payment domain.Payment) error {
	event := PaymentRecordedEvent{
		ID:              payment.ID.String(),
		ClubID:          payment.ClubID.String(),
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		PaymentType:     payment.PaymentType,
		PaymentIntentID: payment.PaymentIntentID,
		PlatformFee:     payment.PlatformFeeAmount,
		ClubEarnings:    payment.ClubEarnings,
		Timestamp:       time.Now(),
	}

	return p.publishEvent(TopicPaymentRecorded, payment.PaymentIntentID, event)
}

// PublishClubWelcome публикует событие завершения онбординга клуба
func (p *kafkaEventProducer) PublishClubWelcome(ctx context.Context, club domain.Club) error {
	event := ClubWelcomeEvent{
		ClubID:          club.ID.String(),
		Slug:            club.Slug,
		Name:            club.Name,
		StripeAccountID: club.StripeAccountID,
		Timestamp:       time.Now(),
	}

	return p.publishEvent(TopicClubWelcome, club.ID.String(), event)
}

func (p *kafkaEventProducer) publishEvent(topic, key string, event any) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Info("Published event to topic %s: partition=%d offset=%d", topic, partition, offset)
	return nil
}

// Close закрывает продюсер
func (p *kafkaEventProducer) Close() error {
	return p.producer.Close()
}
