package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/pkg"
)

// noRouteHandler answers unknown paths with the JSON error envelope.
func noRouteHandler() gin.HandlerFunc {
	return notFound
}

// noMethodHandler answers known paths called with an unsupported method.
func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, pkg.ErrorResponse{
			Code:    http.StatusMethodNotAllowed,
			Message: "method not allowed",
		})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, pkg.ErrorResponse{
		Code:    http.StatusNotFound,
		Message: "not found",
	})
}
