package api

import (
	"context"
	"delivery-route-optimizer/internal/platform/obs"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags each request with an id, reusing the caller's when present.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), obs.RequestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, reqID)

		c.Next()
	}
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		obs.Logger(c.Request.Context()).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.RequestURI(),
			"status": c.Writer.Status(),
			"bytes":  c.Writer.Size(),
			"dur_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")
	}
}

// recoveryMiddleware turns a handler panic into a 500 and logs it with the
// request id instead of writing to stderr.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			obs.Logger(c.Request.Context()).WithFields(log.Fields{
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("handler panicked")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}()

		c.Next()
	}
}
