package services

import (
	"context"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/events"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/redis"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"
)

const trackingCacheTTL = 5 * time.Minute

// TrackingCache caches the public tracking projection. The redis client
// satisfies it; a nil-returning fake works for tests.
type TrackingCache interface {
	SetTracking(ctx context.Context, info *redis.TrackingInfo, ttl time.Duration) error
	GetTracking(ctx context.Context, trackingNumber string) (*redis.TrackingInfo, error)
	InvalidateTracking(ctx context.Context, trackingNumber string) error
}

type OrderService interface {
	GetOrdersByUser(userID uint) ([]models.Order, error)

	// GetOrderForUser returns one order only when it belongs to the caller;
	// anything else is ErrNotFound so existence is not revealed.
	GetOrderForUser(id, userID uint) (*models.Order, error)

	// TrackOrder is the unauthenticated tracking projection: tracking number
	// and status, nothing else.
	TrackOrder(ctx context.Context, trackingNumber string) (*redis.TrackingInfo, error)

	// UpdateStatus applies a fulfilment transition. Only shipped, delivered
	// and cancelled are valid targets; payment states are owned by the
	// payment flow. Setting a tracking number is only valid as part of
	// paid->shipped.
	UpdateStatus(ctx context.Context, orderID uint, target models.OrderStatus, trackingNumber string) (*models.Order, error)

	// CancelOrderForUser cancels an order on behalf of its owner. Orders
	// not visible to the caller are ErrNotFound, like GetOrderForUser.
	CancelOrderForUser(ctx context.Context, orderID, userID uint) (*models.Order, error)
}

// fulfilmentTargets are the statuses UpdateStatus may set directly. The
// payment states (awaiting_payment, paid, payment_failed) are reachable
// only through the intent coordinator and the webhook reconciler.
var fulfilmentTargets = map[models.OrderStatus]bool{
	models.OrderShipped:   true,
	models.OrderDelivered: true,
	models.OrderCancelled: true,
}

type orderService struct {
	orderRepo repository.OrderRepository
	cache     TrackingCache
	publisher events.Publisher
}

func NewOrderService(orderRepo repository.OrderRepository, cache TrackingCache, publisher events.Publisher) OrderService {
	return &orderService{orderRepo: orderRepo, cache: cache, publisher: publisher}
}

func (s *orderService) GetOrdersByUser(userID uint) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByUserID(userID)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "order history lookup", Err: err}
	}
	return orders, nil
}

func (s *orderService) GetOrderForUser(id, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "order lookup", Err: err}
	}
	if order.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return order, nil
}

func (s *orderService) TrackOrder(ctx context.Context, trackingNumber string) (*redis.TrackingInfo, error) {
	if cached, err := s.cache.GetTracking(ctx, trackingNumber); err == nil && cached != nil {
		return cached, nil
	}

	order, err := s.orderRepo.GetByTrackingNumber(trackingNumber)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "tracking lookup", Err: err}
	}

	info := &redis.TrackingInfo{
		TrackingNumber: trackingNumber,
		Status:         string(order.Status),
	}
	if err := s.cache.SetTracking(ctx, info, trackingCacheTTL); err != nil {
		logger.Warn().Err(err).Str("tracking_number", trackingNumber).
			Msg("failed to cache tracking info")
	}
	return info, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, target models.OrderStatus, trackingNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "order lookup", Err: err}
	}

	if !fulfilmentTargets[target] {
		return nil, &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   string(target),
		}
	}

	if target == models.OrderShipped && trackingNumber == "" {
		return nil, &apperrors.ValidationError{
			Violations: []string{"tracking number is required when marking an order shipped"},
		}
	}
	if target != models.OrderShipped && trackingNumber != "" {
		return nil, &apperrors.ValidationError{
			Violations: []string{"tracking number may only be set when marking an order shipped"},
		}
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   string(target),
		}
	}

	var applied bool
	if target == models.OrderShipped {
		applied, err = s.orderRepo.MarkShipped(orderID, trackingNumber)
	} else {
		applied, err = s.orderRepo.TransitionStatus(orderID, order.Status, target)
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "status transition", Err: err}
	}
	if !applied {
		// A concurrent actor changed the row after our read.
		current, lerr := s.orderRepo.GetByID(orderID)
		if lerr != nil {
			return nil, &apperrors.PersistenceError{Op: "order lookup", Err: lerr}
		}
		return nil, &apperrors.InvalidTransitionError{
			From: string(current.Status),
			To:   string(target),
		}
	}

	order.Status = target
	if target == models.OrderShipped {
		order.TrackingNumber = &trackingNumber
	}
	if order.TrackingNumber != nil {
		if cerr := s.cache.InvalidateTracking(ctx, *order.TrackingNumber); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to invalidate tracking cache")
		}
	}

	logger.Info().Uint("order_id", orderID).Str("status", string(target)).Msg("order status updated")
	s.publisher.PublishOrderEvent(ctx, lifecycleEvent(target), order)
	return order, nil
}

func (s *orderService) CancelOrderForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	if _, err := s.GetOrderForUser(orderID, userID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, models.OrderCancelled, "")
}

func lifecycleEvent(status models.OrderStatus) string {
	switch status {
	case models.OrderPaid:
		return events.OrderPaid
	case models.OrderPaymentFailed:
		return events.OrderPaymentFailed
	case models.OrderShipped:
		return events.OrderShipped
	case models.OrderDelivered:
		return events.OrderDelivered
	case models.OrderCancelled:
		return events.OrderCancelled
	default:
		return "order.updated"
	}
}
