// Package routers builds the gin engine and wires the routes.
package routers

import (
	"github.com/gin-gonic/gin"

	"tdp/internal/server/handlers/ustvahandler"
	"tdp/internal/server/middlewares"
)

// SetupRoutes configures the HTTP surface.
func SetupRoutes(ustvaHandler *ustvahandler.UstvaHandler) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "tdp",
			"message": "Service is running",
		})
	})

	v2 := r.Group("/api/v2")
	{
		ustva := v2.Group("/ustva")
		{
			ustva.POST("", ustvaHandler.Create)
			ustva.GET("/:request_id", ustvaHandler.Get)
		}
	}

	return r
}
