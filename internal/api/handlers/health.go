package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grabtok/grabtok/internal/services/cache"
)

const serviceVersion = "1.0.0"

type HealthHandler struct {
	cache *cache.Cache
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Cache     cacheHealthReport `json:"cache"`
}

type cacheHealthReport struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

func NewHealthHandler(c *cache.Cache) *HealthHandler {
	return &HealthHandler{cache: c}
}

// Health godoc
// @Summary Health check endpoint
// @Description Report service health and cache statistics
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	stats := h.cache.Stats()

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   serviceVersion,
		Cache: cacheHealthReport{
			Hits:   stats.Hits,
			Misses: stats.Misses,
			Keys:   stats.Keys,
		},
	})
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description The service has no hard external dependencies; ready once the process serves
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"ready":      true,
		"timestamp":  time.Now().Format(time.RFC3339),
		"cache_keys": h.cache.Stats().Keys,
	})
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
