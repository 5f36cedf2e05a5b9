package web

import (
	"github.com/go-training/oauth-login/pkg/core"

	"github.com/gin-gonic/gin"
)

// requestIDMiddleware tags the request context with a request ID, reusing
// the caller's X-Request-ID when present, and echoes it on the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if reqID := c.GetHeader(core.RequestIDHeader); reqID != "" {
			ctx = core.WithRequestIDValue(ctx, reqID)
		} else {
			ctx = core.WithRequestID(ctx)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(core.RequestIDHeader, core.RequestIDFromCtx(ctx))
		c.Next()
	}
}
