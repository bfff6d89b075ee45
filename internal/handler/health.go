package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks an optional dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and build information
type HealthHandler struct {
	version string
	db      Pinger
	oracle  interface{ IsEnabled() bool }
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(version string, db Pinger, oracle interface{ IsEnabled() bool }) *HealthHandler {
	return &HealthHandler{version: version, db: db, oracle: oracle}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"oracle":  h.oracle != nil && h.oracle.IsEnabled(),
		"pricing": "static",
	}

	if h.db != nil {
		resp["pricing"] = "postgres"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			// the static table still serves prices
			resp["status"] = "degraded"
			resp["database"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
		"service": "home-valuation",
	})
}
