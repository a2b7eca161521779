package services

import (
	"context"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/config"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/events"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/redis"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"
	"github.com/Mtumish1/Nairobi-Gift-Shop/pkg/payment"
)

// PaymentGateway is the outbound gateway surface the coordinator needs.
// pkg/payment.Client satisfies it.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, currency string) (*payment.PaymentIntent, error)
}

// RetryQueue holds verified webhook events whose reconciliation failed.
// The redis client satisfies it.
type RetryQueue interface {
	EnqueueWebhookEvent(ctx context.Context, event *redis.PendingEvent) error
	DequeueWebhookEvent(ctx context.Context) (*redis.PendingEvent, error)
	DeadLetterWebhookEvent(ctx context.Context, event *redis.PendingEvent) error
}

type PaymentService interface {
	// RequestIntent asks the gateway for a payment intent covering the
	// order total and moves the order to awaiting_payment. On gateway
	// failure the order stays pending and the call is safe to retry; a
	// retry replaces the stored intent reference.
	RequestIntent(ctx context.Context, orderID uint) (string, error)

	// ProcessEvent reconciles one verified webhook payload. A reconciliation
	// blocked by storage trouble is queued for out-of-band retry and does
	// not surface as an error; only an undecodable payload does.
	ProcessEvent(ctx context.Context, body []byte) error

	// HandleEvent applies a decoded gateway event to the matching order.
	// Duplicate deliveries and events for unknown intents are no-ops.
	HandleEvent(ctx context.Context, event *payment.Event) error

	// StartRetryWorker drains the retry queue on an interval until the
	// context is cancelled.
	StartRetryWorker(ctx context.Context)
}

type paymentService struct {
	orderRepo  repository.OrderRepository
	gateway    PaymentGateway
	queue      RetryQueue
	publisher  events.Publisher
	currency   string
	retryEvery time.Duration
	maxRetries int
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	queue RetryQueue,
	publisher events.Publisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		orderRepo:  orderRepo,
		gateway:    gateway,
		queue:      queue,
		publisher:  publisher,
		currency:   cfg.Currency,
		retryEvery: time.Duration(cfg.WebhookRetryInterval) * time.Second,
		maxRetries: cfg.WebhookMaxAttempts,
	}
}

func (s *paymentService) RequestIntent(ctx context.Context, orderID uint) (string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return "", apperrors.ErrNotFound
		}
		return "", &apperrors.PersistenceError{Op: "order lookup", Err: err}
	}

	if order.Status != models.OrderPending && order.Status != models.OrderAwaitingPayment {
		return "", &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   string(models.OrderAwaitingPayment),
		}
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, order.TotalAmount, s.currency)
	if err != nil {
		logger.Warn().Err(err).Uint("order_id", orderID).Msg("payment intent request failed")
		return "", &apperrors.PaymentGatewayError{Err: err}
	}

	applied, err := s.orderRepo.MarkAwaitingPayment(orderID, intent.ID)
	if err != nil {
		return "", &apperrors.PersistenceError{Op: "intent association", Err: err}
	}
	if !applied {
		// A concurrent transition (e.g. cancellation) won the row.
		current, lerr := s.orderRepo.GetByID(orderID)
		if lerr != nil {
			return "", &apperrors.PersistenceError{Op: "order lookup", Err: lerr}
		}
		return "", &apperrors.InvalidTransitionError{
			From: string(current.Status),
			To:   string(models.OrderAwaitingPayment),
		}
	}

	logger.Info().Uint("order_id", orderID).Str("intent_id", intent.ID).
		Msg("payment intent created")
	return intent.ID, nil
}

func (s *paymentService) ProcessEvent(ctx context.Context, body []byte) error {
	event, err := payment.ParseEvent(body)
	if err != nil {
		return err
	}

	if err := s.HandleEvent(ctx, event); err != nil {
		// Storage trouble is retried out-of-band; the gateway still gets
		// its prompt acknowledgement.
		pending := &redis.PendingEvent{Payload: body, Attempts: 1, QueuedAt: time.Now()}
		if qerr := s.queue.EnqueueWebhookEvent(ctx, pending); qerr != nil {
			logger.Error().Err(qerr).Msg("failed to queue webhook event for retry")
		} else {
			logger.Warn().Err(err).Str("event", event.Type).Msg("webhook reconciliation deferred")
		}
	}
	return nil
}

func (s *paymentService) HandleEvent(ctx context.Context, event *payment.Event) error {
	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.settle(ctx, event.Data.Object.ID, models.OrderPaid, events.OrderPaid)
	case payment.EventPaymentFailed:
		return s.settle(ctx, event.Data.Object.ID, models.OrderPaymentFailed, events.OrderPaymentFailed)
	default:
		logger.Info().Str("event", event.Type).Msg("ignoring unhandled webhook event type")
		return nil
	}
}

// settle moves the order matched by intent id from awaiting_payment to the
// settled state. Duplicate deliveries find the order already settled and do
// nothing; gateways do not guarantee exactly-once delivery.
func (s *paymentService) settle(ctx context.Context, intentID string, target models.OrderStatus, eventType string) error {
	order, err := s.orderRepo.GetByPaymentIntentID(intentID)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			logger.Warn().Str("intent_id", intentID).Msg("webhook event for unknown payment intent")
			return nil
		}
		return &apperrors.PersistenceError{Op: "order lookup by intent", Err: err}
	}

	if order.Status == target {
		logger.Info().Uint("order_id", order.ID).Str("intent_id", intentID).
			Msg("duplicate webhook delivery, order already settled")
		return nil
	}
	if order.Status != models.OrderAwaitingPayment {
		logger.Warn().Uint("order_id", order.ID).Str("status", string(order.Status)).
			Str("intent_id", intentID).Msg("webhook event for order not awaiting payment")
		return nil
	}

	applied, err := s.orderRepo.TransitionStatus(order.ID, models.OrderAwaitingPayment, target)
	if err != nil {
		return &apperrors.PersistenceError{Op: "payment settlement", Err: err}
	}
	if !applied {
		// Lost the row to a concurrent actor; a duplicate of this very
		// event is the common case and needs no further action.
		logger.Info().Uint("order_id", order.ID).Msg("payment settlement already applied")
		return nil
	}

	order.Status = target
	logger.Info().Uint("order_id", order.ID).Str("status", string(target)).Msg("order settled")
	s.publisher.PublishOrderEvent(ctx, eventType, order)
	return nil
}

func (s *paymentService) StartRetryWorker(ctx context.Context) {
	ticker := time.NewTicker(s.retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.drainRetryQueue(ctx)
		}
	}
}

func (s *paymentService) drainRetryQueue(ctx context.Context) {
	for {
		pending, err := s.queue.DequeueWebhookEvent(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to read webhook retry queue")
			return
		}
		if pending == nil {
			return
		}

		event, err := payment.ParseEvent(pending.Payload)
		if err != nil {
			logger.Error().Err(err).Msg("dropping undecodable queued webhook event")
			continue
		}

		if err := s.HandleEvent(ctx, event); err != nil {
			pending.Attempts++
			if pending.Attempts >= s.maxRetries {
				logger.Error().Err(err).Int("attempts", pending.Attempts).
					Msg("webhook event exhausted retries, dead-lettering")
				if dlerr := s.queue.DeadLetterWebhookEvent(ctx, pending); dlerr != nil {
					logger.Error().Err(dlerr).Msg("failed to dead-letter webhook event")
				}
				continue
			}
			if qerr := s.queue.EnqueueWebhookEvent(ctx, pending); qerr != nil {
				logger.Error().Err(qerr).Msg("failed to requeue webhook event")
			}
			return
		}
	}
}
