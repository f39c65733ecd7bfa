package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers the supervisor's liveness probe. No business logic.
func NewHealthRoutes(handler *gin.Engine) {
	handler.GET("/health", healthCheck)
	handler.HEAD("/health", healthCheck)
}

func healthCheck(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.String(http.StatusOK, "Service is alive")
}
