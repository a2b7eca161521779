package repository

import (
	"errors"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"

	"gorm.io/gorm"
)

var ErrRecordNotFound = gorm.ErrRecordNotFound

type OrderRepository interface {
	CreateWithItems(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByUserID(userID uint) ([]models.Order, error)
	GetByPaymentIntentID(intentID string) (*models.Order, error)
	GetByTrackingNumber(trackingNumber string) (*models.Order, error)
	TransitionStatus(id uint, from, to models.OrderStatus) (bool, error)
	MarkAwaitingPayment(id uint, intentID string) (bool, error)
	MarkShipped(id uint, trackingNumber string) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems persists an order and its line items as one transaction.
// Either all rows exist afterwards or none do; an order with zero items is
// never observable.
func (r *orderRepository) CreateWithItems(order *models.Order) error {
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByPaymentIntentID(intentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("payment_intent_id = ?", intentID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByTrackingNumber(trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("tracking_number = ?", trackingNumber).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionStatus applies from->to only when the row is still in the from
// state. The conditional update serializes concurrent mutations of the same
// order; the caller learns from the return value whether it won.
func (r *orderRepository) TransitionStatus(id uint, from, to models.OrderStatus) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}

// MarkAwaitingPayment stores the payment intent reference. It matches both
// pending and awaiting_payment so a retried intent request replaces the
// stored reference instead of failing.
func (r *orderRepository) MarkAwaitingPayment(id uint, intentID string) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, []models.OrderStatus{models.OrderPending, models.OrderAwaitingPayment}).
		Updates(map[string]interface{}{
			"status":            models.OrderAwaitingPayment,
			"payment_intent_id": intentID,
			"updated_at":        time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}

// MarkShipped sets the tracking number as part of the paid->shipped
// transition; the tracking number can never be set any other way.
func (r *orderRepository) MarkShipped(id uint, trackingNumber string) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderPaid).
		Updates(map[string]interface{}{
			"status":          models.OrderShipped,
			"tracking_number": trackingNumber,
			"updated_at":      time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}
