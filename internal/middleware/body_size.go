package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
)

// multipartOverhead leaves room for the JSON request part and boundaries on
// top of the image ceiling.
const multipartOverhead = 1 << 20

// BodyLimit rejects bodies above maxImageBytes plus multipart overhead.
// Declared lengths are refused up front; streamed bodies fail on read.
func BodyLimit(maxImageBytes int64) gin.HandlerFunc {
	limit := maxImageBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			Fail(c, apperror.PayloadTooLarge(maxImageBytes))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from a body cut off by BodyLimit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
