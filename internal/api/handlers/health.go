package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const Banner = "GoFast Delivery Optimization Service is running."

// Health provides a minimal liveness check endpoint.
func Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func Root(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"message": Banner})
}
