package events

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	OrderCreated       = "order.created"
	OrderPaid          = "order.paid"
	OrderPaymentFailed = "order.payment_failed"
	OrderShipped       = "order.shipped"
	OrderDelivered     = "order.delivered"
	OrderCancelled     = "order.cancelled"
)

// Publisher emits order lifecycle events for downstream consumers. Publishing
// is best-effort: a broker failure is logged and never fails the transition
// that produced the event.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *models.Order)
}

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uint               `json:"order_id"`
	UserID      uint               `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishOrderEvent(ctx context.Context, eventType string, order *models.Order) {
	event := OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event", eventType).Msg("failed to marshal order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(order.ID), 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Str("event", eventType).Uint("order_id", order.ID).
			Msg("failed to publish order event")
	}
}

// NopPublisher drops events; used when Kafka is not configured and in tests.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, string, *models.Order) {}
