package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"home-valuation/internal/model"
)

// RouterConfig holds the handlers and settings the router is built from
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins string
	Evaluate       *EvaluateHandler
	Rubric         *RubricHandler
	Health         *HealthHandler
}

// NewRouter sets up the gin engine with middleware and routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.AllowedOrigins); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", cfg.Health.Health)
	router.GET("/version", cfg.Health.Version)

	apiV1 := router.Group("/api/v1")
	{
		// Evaluation endpoints
		apiV1.POST("/evaluate", cfg.Evaluate.Evaluate)
		apiV1.POST("/evaluate/score", cfg.Evaluate.Score)

		// Reference data
		apiV1.GET("/rubric", cfg.Rubric.Rubric)
		apiV1.GET("/districts", cfg.Rubric.Districts)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "endpoint not found", Code: "NOT_FOUND"})
	})

	return router
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
