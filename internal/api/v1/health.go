package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/shopfront/internal/api/dto"
	"github.com/shopfront/shopfront/internal/logger"
)

type HealthHandler struct {
	logger *logger.Logger
}

func NewHealthHandler(
	logger *logger.Logger,
) *HealthHandler {
	return &HealthHandler{
		logger: logger,
	}
}

// Health reports that the server is up
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
