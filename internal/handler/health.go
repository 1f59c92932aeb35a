package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger checks that the persistence backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the reply of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler reports service liveness
type HealthHandler struct {
	store             Pinger
	providerAvailable bool
	logger            *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, providerAvailable bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:             store,
		providerAvailable: providerAvailable,
		logger:            logger,
	}
}

// GetHealth pings the store. A missing provider key degrades the service but
// does not make it unhealthy.
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Store:     "ok",
		Provider:  "configured",
		Timestamp: time.Now().UTC(),
	}
	if !h.providerAvailable {
		resp.Provider = "not configured"
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Store = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}
