package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/shopfront/internal/api/dto"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/service"
)

type CartHandler struct {
	cartService service.CartService
	logger      *logger.Logger
}

func NewCartHandler(cartService service.CartService, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// Estimate prices a cart with the checkout rules
func (h *CartHandler) Estimate(c *gin.Context) {
	var req dto.CartEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.cartService.Estimate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
