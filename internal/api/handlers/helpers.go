package handlers

import (
	"delivery-route-optimizer/internal/platform/obs"
	"net/http"

	"github.com/gin-gonic/gin"
)

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	if status >= http.StatusInternalServerError {
		obs.Logger(c.Request.Context()).WithField("status", status).Error(msg)
	}
	writeJSON(c, status, gin.H{"error": msg})
}
