package middleware

import (
	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached to the gin context as the structured
// {"error": {...}} payload. Handlers call c.Error(err) and return.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || c.Writer.Written() {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		zap.L().Error("unhandled request error",
			zap.String("path", c.FullPath()),
			zap.Error(err.Err),
		)
		v := errutil.Internal("internal server error").(errutil.BaseError)
		c.JSON(v.Code.HTTPStatus(), v.JSON())
	}
}
