package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/redis"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheckoutService struct {
	order *models.Order
	err   error
}

func (s *stubCheckoutService) ValidateCart(cart []services.CartItemRequest, addr services.DeliveryAddress) ([]models.OrderItem, error) {
	return nil, nil
}

func (s *stubCheckoutService) Checkout(ctx context.Context, userID uint, cart []services.CartItemRequest, addr services.DeliveryAddress, deliveryOption string) (*models.Order, error) {
	return s.order, s.err
}

type stubOrderService struct {
	updateErr error
	cancelErr error
}

func (s *stubOrderService) GetOrdersByUser(userID uint) ([]models.Order, error) { return nil, nil }

func (s *stubOrderService) GetOrderForUser(id, userID uint) (*models.Order, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubOrderService) TrackOrder(ctx context.Context, trackingNumber string) (*redis.TrackingInfo, error) {
	return &redis.TrackingInfo{TrackingNumber: trackingNumber, Status: "shipped"}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID uint, target models.OrderStatus, trackingNumber string) (*models.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.Order{ID: orderID, Status: target}, nil
}

func (s *stubOrderService) CancelOrderForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &models.Order{ID: orderID, UserID: userID, Status: models.OrderCancelled}, nil
}

func newOrderRouter(checkout *stubCheckoutService, orders *stubOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewOrderHandler(checkout, orders)
	// auth is exercised separately; inject the identity directly here
	router.Use(func(c *gin.Context) {
		c.Set(contextUserID, uint(7))
		c.Set(contextUserRole, models.RoleStaff)
	})
	router.POST("/api/orders/checkout", handler.Checkout)
	router.GET("/api/orders/:id", handler.GetOrderByID)
	router.GET("/api/orders/track/:trackingNumber", handler.TrackOrder)
	router.POST("/api/orders/:id/cancel", handler.CancelOrder)
	router.PATCH("/api/orders/:id/status", handler.UpdateOrderStatus)
	return router
}

func TestCheckoutEndpointReturnsOrderAndIntent(t *testing.T) {
	intentID := "pi_1"
	checkout := &stubCheckoutService{order: &models.Order{
		ID:              12,
		Status:          models.OrderAwaitingPayment,
		TotalAmount:     2600,
		PaymentIntentID: &intentID,
	}}
	router := newOrderRouter(checkout, &stubOrderService{})

	body := `{"cart":[{"product_id":1,"quantity":2}],"delivery_address":{"recipient_name":"W","recipient_phone":"+254","address":"X","area_code":"CBD"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(12), resp["order_id"])
	assert.Equal(t, "pi_1", resp["payment_intent_id"])
	assert.Equal(t, float64(2600), resp["total_amount"])
}

func TestCheckoutEndpointValidationFailureLists(t *testing.T) {
	checkout := &stubCheckoutService{err: &apperrors.ValidationError{
		Violations: []string{"cart is empty", "delivery address: recipient name is required"},
	}}
	router := newOrderRouter(checkout, &stubOrderService{})

	body := `{"cart":[{"product_id":1,"quantity":1}],"delivery_address":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Violations, 2)
}

func TestUpdateStatusEndpointMapsInvalidTransitionTo409(t *testing.T) {
	orders := &stubOrderService{updateErr: &apperrors.InvalidTransitionError{
		From: "pending", To: "shipped",
	}}
	router := newOrderRouter(&stubCheckoutService{}, orders)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/5/status",
		strings.NewReader(`{"status":"shipped","tracking_number":"TRK1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatusEndpointRejectsUnknownStatus(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/5/status",
		strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackEndpointExposesOnlyPublicProjection(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/track/TRK9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{
		"tracking_number": "TRK9",
		"status":          "shipped",
	}, resp)
}

func TestCancelEndpointCancelsOwnOrder(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/5/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(models.OrderCancelled), resp.Status)
}

func TestCancelEndpointMapsInvalidTransitionTo409(t *testing.T) {
	orders := &stubOrderService{cancelErr: &apperrors.InvalidTransitionError{
		From: "shipped", To: "cancelled",
	}}
	router := newOrderRouter(&stubCheckoutService{}, orders)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/5/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetOrderEndpointHidesForeignOrders(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
