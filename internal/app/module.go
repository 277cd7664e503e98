package app

import "github.com/gin-gonic/gin"

// Module is a self-registering REST module. Each module registers its
// routes under the /rest group.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
