package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyRequestID is the Gin context key for the request ID.
	ContextKeyRequestID = "request_id"
	// ContextKeyCorrelationID is the Gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"

	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestIDMiddleware assigns a request ID and a correlation ID to every request.
// Both are echoed from the incoming headers when present. The correlation ID
// defaults to the request ID so a single call can still be traced end to end.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		corrID := c.GetHeader(HeaderCorrelationID)
		if corrID == "" {
			corrID = reqID
		}

		c.Set(ContextKeyRequestID, reqID)
		c.Set(ContextKeyCorrelationID, corrID)
		c.Header(HeaderRequestID, reqID)
		c.Header(HeaderCorrelationID, corrID)
		c.Next()
	}
}

// CorrelationID returns the correlation ID stored by RequestIDMiddleware.
func CorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
