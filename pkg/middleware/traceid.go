package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDMiddleware tags every request with a fresh trace id. The id rides
// the response header and the APIResponse envelope, and is the handle support
// asks for when a webhook or checkout call needs log correlation.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("trace_id", id)
		c.Writer.Header().Set("X-Trace-ID", id)
		c.Next()
	}
}
