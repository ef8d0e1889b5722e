package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grabtok/grabtok/internal/config"
	"github.com/grabtok/grabtok/internal/utils"
)

// APIKeyMiddleware checks X-API-Key against the configured allow-list.
// An empty list disables authentication entirely.
func APIKeyMiddleware(cfg *config.APIConfig) gin.HandlerFunc {
	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		if _, ok := keys[c.GetHeader("X-API-Key")]; ok {
			c.Next()
			return
		}

		c.JSON(401, gin.H{
			"error":      utils.NewUnauthorizedError(),
			"request_id": c.GetString("request_id"),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
		c.Abort()
	}
}
