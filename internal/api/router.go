package api

import (
	"delivery-route-optimizer/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// NewRouter wires HTTP handlers with their dependencies.
// Handlers stay unaware of concrete adapters.
func NewRouter(optimizer handlers.RouteOptimizer) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), loggingMiddleware(), recoveryMiddleware())

	optimize := &handlers.OptimizeHandler{Optimizer: optimizer}

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)
	r.POST("/optimize_delivery_route/", optimize.Optimize)

	return r
}
