package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit returns a Gin middleware that caps the request body at
// maxMB megabytes. Oversized uploads fail when the handler reads the body,
// surfacing as a request parse error rather than an unbounded buffer.
func BodySizeLimit(maxMB int64) gin.HandlerFunc {
	maxBytes := maxMB << 20
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
