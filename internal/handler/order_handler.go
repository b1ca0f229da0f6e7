package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/service"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid order payload: "+err.Error())
		return
	}

	requestID := c.GetString(middleware.RequestIDKey)
	order, err := h.orders.CreateOrder(c.Request.Context(), ident, req, requestID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, order)
}

// List returns the caller's visible orders. customerId and sellerId query
// params narrow the result; they can never widen it past the caller's scope.
func (h *OrderHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), ident,
		c.Query("customerId"), c.Query("sellerId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), ident, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

func (h *OrderHandler) Update(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req domain.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid update payload: "+err.Error())
		return
	}

	requestID := c.GetString(middleware.RequestIDKey)
	order, err := h.orders.UpdateOrder(c.Request.Context(), ident, c.Param("id"), req, requestID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}
