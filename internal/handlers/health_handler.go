package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health pings the store and reports whether the API can serve requests.
func (h *Handler) Health(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			h.Log.WarnContext(ctx, "health check: store unreachable", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":   false,
				"message":   "Database unreachable",
				"timestamp": now,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": now,
	})
}
