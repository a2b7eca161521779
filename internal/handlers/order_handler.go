package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	checkoutService services.CheckoutService
	orderService    services.OrderService
}

func NewOrderHandler(checkoutService services.CheckoutService, orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

type CheckoutRequest struct {
	Cart            []services.CartItemRequest `json:"cart"`
	DeliveryAddress services.DeliveryAddress   `json:"delivery_address"`
	DeliveryOption  string                     `json:"delivery_option"`
}

type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart and delivery address are required"})
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), currentUserID(c), req.Cart, req.DeliveryAddress, req.DeliveryOption)
	if err != nil {
		var gatewayErr *apperrors.PaymentGatewayError
		if errors.As(err, &gatewayErr) && order != nil {
			// The order was created and stays pending; hand back its id so
			// the client does not resubmit the cart.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    "payment gateway unavailable",
				"order_id": order.ID,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":          order.ID,
		"payment_intent_id": order.PaymentIntentID,
		"total_amount":      order.TotalAmount,
		"status":            order.Status,
	})
}

func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	orders, err := h.orderService.GetOrdersByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrderForUser(uint(id), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) TrackOrder(c *gin.Context) {
	info, err := h.orderService.TrackOrder(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.CancelOrderForUser(c.Request.Context(), uint(id), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), uint(id), models.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
