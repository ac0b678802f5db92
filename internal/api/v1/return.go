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

type ReturnHandler struct {
	returnService service.ReturnService
	logger        *logger.Logger
}

func NewReturnHandler(returnService service.ReturnService, logger *logger.Logger) *ReturnHandler {
	return &ReturnHandler{
		returnService: returnService,
		logger:        logger,
	}
}

// CreateReturn opens a return request for part of an order
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req dto.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.returnService.CreateReturn(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetReturn retrieves a return by ID
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	response, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListReturns lists returns with filtering
func (h *ReturnHandler) ListReturns(c *gin.Context) {
	filter := types.NewReturnFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.returnService.ListReturns(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PreviewRefund computes the refund of a proposed adjudication
func (h *ReturnHandler) PreviewRefund(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	var req dto.PreviewRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.returnService.PreviewRefund(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CompleteReturn adjudicates the return and records the refund owed
func (h *ReturnHandler) CompleteReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	var req dto.CompleteReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.returnService.CompleteReturn(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RejectReturn closes the return without a refund
func (h *ReturnHandler) RejectReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	// the note is optional, an empty body is fine
	var req dto.RejectReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	response, err := h.returnService.RejectReturn(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func returnID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("return ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return "", false
	}
	return id, true
}
