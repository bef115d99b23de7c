package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// ErrorHandler renders the last error a handler attached with c.Error as the
// JSON error body. Responses already written are left alone.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := apperror.From(err)

		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.Error("Request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("category", string(appErr.Category)),
				zap.Error(err),
			)
		} else {
			log.Debug("Request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("category", string(appErr.Category)),
				zap.Error(err),
			)
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, Render(appErr))
	}
}

// Render converts an application error to the wire error body.
func Render(err *apperror.Error) types.ErrorResponse {
	resp := types.ErrorResponse{
		Error: err.Message,
		Code:  string(err.Category),
	}
	if len(err.Fields) > 0 {
		resp.Fields = err.Fields
	}
	return resp
}

// Fail attaches err to the context and stops the chain.
func Fail(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		err = apperror.Internal("", err)
	}
	_ = c.Error(err)
	c.Abort()
}
