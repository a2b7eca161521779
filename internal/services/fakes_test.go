package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/redis"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"
	"github.com/Mtumish1/Nairobi-Gift-Shop/pkg/payment"
)

// memOrderRepo is an in-memory stand-in for the gorm order repository with
// the same conditional-update semantics.
type memOrderRepo struct {
	mu             sync.Mutex
	nextID         uint
	orders         map[uint]*models.Order
	failCreate     bool
	failTransition bool
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uint]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	clone := *o
	clone.Items = append([]models.OrderItem(nil), o.Items...)
	return &clone
}

func (r *memOrderRepo) CreateWithItems(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("storage unavailable")
	}
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return copyOrder(order), nil
}

func (r *memOrderRepo) GetByUserID(userID uint) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, *copyOrder(order))
		}
	}
	return orders, nil
}

func (r *memOrderRepo) GetByPaymentIntentID(intentID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.PaymentIntentID != nil && *order.PaymentIntentID == intentID {
			return copyOrder(order), nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (r *memOrderRepo) GetByTrackingNumber(trackingNumber string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.TrackingNumber != nil && *order.TrackingNumber == trackingNumber {
			return copyOrder(order), nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (r *memOrderRepo) TransitionStatus(id uint, from, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTransition {
		return false, errors.New("storage unavailable")
	}
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *memOrderRepo) MarkAwaitingPayment(id uint, intentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	if order.Status != models.OrderPending && order.Status != models.OrderAwaitingPayment {
		return false, nil
	}
	order.Status = models.OrderAwaitingPayment
	order.PaymentIntentID = &intentID
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *memOrderRepo) MarkShipped(id uint, trackingNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != models.OrderPaid {
		return false, nil
	}
	order.Status = models.OrderShipped
	order.TrackingNumber = &trackingNumber
	order.UpdatedAt = time.Now()
	return true, nil
}

type memProductRepo struct {
	products map[uint]*models.Product
}

func newMemProductRepo(products ...models.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[uint]*models.Product)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (r *memProductRepo) GetByID(id uint) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *memProductRepo) GetAll() ([]models.Product, error) {
	var products []models.Product
	for _, p := range r.products {
		products = append(products, *p)
	}
	return products, nil
}

func (r *memProductRepo) GetByCategoryID(categoryID uint) ([]models.Product, error) {
	var products []models.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (r *memProductRepo) Create(product *models.Product) error {
	r.products[product.ID] = product
	return nil
}

// fakeGateway records intent requests and can be told to fail.
type fakeGateway struct {
	calls  int
	fail   bool
	nextID string
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount float64, currency string) (*payment.PaymentIntent, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("gateway timeout")
	}
	id := g.nextID
	if id == "" {
		id = "pi_test_1"
	}
	return &payment.PaymentIntent{ID: id, Amount: amount, Currency: currency, Status: "requires_payment"}, nil
}

// memQueue is an in-memory retry queue.
type memQueue struct {
	mu     sync.Mutex
	events []*redis.PendingEvent
	dead   []*redis.PendingEvent
}

func (q *memQueue) EnqueueWebhookEvent(ctx context.Context, event *redis.PendingEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

func (q *memQueue) DequeueWebhookEvent(ctx context.Context) (*redis.PendingEvent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil, nil
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, nil
}

func (q *memQueue) DeadLetterWebhookEvent(ctx context.Context, event *redis.PendingEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, event)
	return nil
}

// nopCache never hits and swallows writes.
type nopCache struct{}

func (nopCache) SetTracking(context.Context, *redis.TrackingInfo, time.Duration) error {
	return nil
}

func (nopCache) GetTracking(context.Context, string) (*redis.TrackingInfo, error) {
	return nil, nil
}

func (nopCache) InvalidateTracking(context.Context, string) error { return nil }
