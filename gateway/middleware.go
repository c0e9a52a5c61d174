package gateway

import (
	"net/http"
	"time"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id of a gateway call
const RequestIDHeader = "X-Request-Id"

// recovery turns a panic in a handler into a 500 response
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				Logger.Errorf("[PANIC] %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// requestID attaches a CallInfo to the request context.
// An id sent by the caller is kept, otherwise a new one is generated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		ctx := pipeline.WithCallInfo(c.Request.Context(), pipeline.CallInfo{
			RequestID: id,
			Origin:    "http",
			Start:     time.Now(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogger logs every request after it was handled
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		Logger.Debugf("[%s] %s %s %d %s",
			c.Writer.Header().Get(RequestIDHeader), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
