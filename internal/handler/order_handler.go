package handler

import (
	"errors"
	"net/http"
	"strconv"

	"redvital/internal/middleware"
	"redvital/internal/repository"
	"redvital/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderSvc    *service.OrderService
	paymentSvc  *service.PaymentService
	productRepo *repository.ProductRepository
}

func NewOrderHandler(orderSvc *service.OrderService, paymentSvc *service.PaymentService, productRepo *repository.ProductRepository) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc, paymentSvc: paymentSvc, productRepo: productRepo}
}

// ListProducts handles GET /products.
func (h *OrderHandler) ListProducts(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.productRepo.ListActive(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

// Checkout handles POST /orders.
func (h *OrderHandler) Checkout(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	var in struct {
		Lines []service.CheckoutLine `json:"lines" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orderSvc.Checkout(memberID, in.Lines)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := h.orderSvc.GetOwned(memberID, uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Pay handles POST /orders/:id/pay. Payment comes from the member's wallet;
// the generated reference makes retries of this call idempotent server-side.
func (h *OrderHandler) Pay(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	if _, err := h.orderSvc.GetOwned(memberID, uint(orderID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	err = h.paymentSvc.OnPaymentConfirmed(uint(orderID), uuid.NewString())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed, order left retriable"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// ConfirmWebhook handles POST /webhooks/payment for external gateways: the
// caller supplies its own payment reference, duplicate deliveries are no-ops.
func (h *OrderHandler) ConfirmWebhook(c *gin.Context) {
	var in struct {
		OrderID    uint   `json:"order_id" binding:"required"`
		PaymentRef string `json:"payment_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.paymentSvc.OnPaymentConfirmed(in.OrderID, in.PaymentRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
