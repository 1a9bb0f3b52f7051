package middlewares

import (
	"log/slog"

	"github.com/aliasrafbd/hostel-management-server/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error as
// {success:false, error:<kind>, message}.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperror.As(c.Errors.Last().Err)
		switch appErr.Kind {
		case apperror.KindInternal, apperror.KindUpstream:
			slog.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(RequestIDKey),
				"err", c.Errors.Last().Err,
			)
		}
		c.JSON(appErr.Kind.Status(), gin.H{
			"success": false,
			"error":   string(appErr.Kind),
			"message": appErr.Message,
		})
	}
}

// Fail attaches err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
