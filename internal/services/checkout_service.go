package services

import (
	"context"
	"fmt"
	"os"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/config"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/events"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type CartItemRequest struct {
	ProductID       uint                    `json:"product_id"`
	Quantity        int                     `json:"quantity"`
	Personalization *PersonalizationRequest `json:"personalization"`
}

type PersonalizationRequest struct {
	Text     string `json:"text"`
	Color    string `json:"color"`
	ImageURL string `json:"image_url"`
}

type DeliveryAddress struct {
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Address        string `json:"address"`
	AreaCode       string `json:"area_code"`
	Instructions   string `json:"instructions"`
}

type CheckoutService interface {
	// ValidateCart checks a proposed cart and address against the current
	// catalog snapshot without reserving stock. On failure the returned
	// ValidationError lists every violated rule.
	ValidateCart(cart []CartItemRequest, addr DeliveryAddress) ([]models.OrderItem, error)

	// Checkout validates the cart, persists the order atomically in pending
	// state and requests a payment intent. When intent creation fails the
	// created order is returned alongside a PaymentGatewayError; the order
	// stays pending and the intent request may be retried.
	Checkout(ctx context.Context, userID uint, cart []CartItemRequest, addr DeliveryAddress, deliveryOption string) (*models.Order, error)
}

type checkoutService struct {
	productRepo    repository.ProductRepository
	orderRepo      repository.OrderRepository
	paymentService PaymentService
	publisher      events.Publisher
	cfg            *config.Config
}

func NewCheckoutService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentService PaymentService,
	publisher events.Publisher,
	cfg *config.Config,
) CheckoutService {
	return &checkoutService{
		productRepo:    productRepo,
		orderRepo:      orderRepo,
		paymentService: paymentService,
		publisher:      publisher,
		cfg:            cfg,
	}
}

func (s *checkoutService) ValidateCart(cart []CartItemRequest, addr DeliveryAddress) ([]models.OrderItem, error) {
	var violations []string
	var items []models.OrderItem

	if len(cart) == 0 {
		violations = append(violations, "cart is empty")
	}

	for i, line := range cart {
		if line.Quantity <= 0 {
			violations = append(violations, fmt.Sprintf("item %d: quantity must be a positive integer", i+1))
			continue
		}

		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			if err == repository.ErrRecordNotFound {
				violations = append(violations, fmt.Sprintf("item %d: product %d does not exist", i+1, line.ProductID))
				continue
			}
			return nil, &apperrors.PersistenceError{Op: "catalog lookup", Err: err}
		}

		if !product.InStock(line.Quantity) {
			violations = append(violations, fmt.Sprintf("item %d: insufficient stock for product %d", i+1, line.ProductID))
			continue
		}

		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		}
		if p := line.Personalization; p != nil {
			item.PersonalizationText = p.Text
			item.PersonalizationColor = p.Color
			item.PersonalizationImage = p.ImageURL
			if p.ImageURL != "" {
				item.Surcharge = s.cfg.ImageSurcharge
			}
		}
		items = append(items, item)
	}

	if addr.RecipientName == "" {
		violations = append(violations, "delivery address: recipient name is required")
	}
	if addr.RecipientPhone == "" {
		violations = append(violations, "delivery address: recipient phone is required")
	}
	if addr.Address == "" {
		violations = append(violations, "delivery address: address text is required")
	}
	if _, ok := s.cfg.DeliveryFees[addr.AreaCode]; !ok {
		violations = append(violations, fmt.Sprintf("delivery address: unknown delivery area %q", addr.AreaCode))
	}

	if len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}
	return items, nil
}

func (s *checkoutService) Checkout(ctx context.Context, userID uint, cart []CartItemRequest, addr DeliveryAddress, deliveryOption string) (*models.Order, error) {
	items, err := s.ValidateCart(cart, addr)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	fee, ok := s.cfg.DeliveryFee(addr.AreaCode, subtotal)
	if !ok {
		return nil, &apperrors.ValidationError{
			Violations: []string{fmt.Sprintf("delivery address: unknown delivery area %q", addr.AreaCode)},
		}
	}

	// Totals are computed exactly once here; nothing downstream is allowed
	// to re-derive them from the live catalog.
	order := &models.Order{
		UserID:         userID,
		Status:         models.OrderPending,
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		TotalAmount:    subtotal + fee,
		RecipientName:  addr.RecipientName,
		RecipientPhone: addr.RecipientPhone,
		Address:        addr.Address,
		AreaCode:       addr.AreaCode,
		Instructions:   addr.Instructions,
		DeliveryOption: deliveryOption,
		Items:          items,
	}

	if err := s.orderRepo.CreateWithItems(order); err != nil {
		return nil, &apperrors.PersistenceError{Op: "order creation", Err: err}
	}

	logger.Info().Uint("order_id", order.ID).Uint("user_id", userID).
		Float64("total", order.TotalAmount).Msg("order created")
	s.publisher.PublishOrderEvent(ctx, events.OrderCreated, order)

	intentID, err := s.paymentService.RequestIntent(ctx, order.ID)
	if err != nil {
		// The order exists and stays pending; surface the gateway failure
		// together with the order so the caller can retry the intent.
		return order, err
	}

	order.Status = models.OrderAwaitingPayment
	order.PaymentIntentID = &intentID
	return order, nil
}
