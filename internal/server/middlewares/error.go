package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns collected gin errors into a uniform 500 body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
		}
	}
}
