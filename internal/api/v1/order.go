package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/shopfront/internal/api/dto"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/service"
	"github.com/shopfront/shopfront/internal/types"
)

type OrderHandler struct {
	orderService service.OrderService
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// CreateOrder places an order priced with the checkout rules
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetOrder retrieves an order by ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("order ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListOrders lists orders with filtering
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := types.NewOrderFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
