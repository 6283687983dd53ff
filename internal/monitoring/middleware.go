package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestMiddleware tags each request with an ID and logs it on completion.
func RequestMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.RequestLogger(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			requestID,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
