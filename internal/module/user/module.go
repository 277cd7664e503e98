package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/middleware"
)

// Module registers the user routes.
type Module struct {
	handler *Handler
}

// NewModule creates a user Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the /users and /me routes on api.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	h := m.handler
	api.POST("/users", h.Register)
	api.POST("/users/confirmation", h.Confirm)

	authed := api.Group("", middleware.RequireActor())
	authed.GET("/me", h.Me)
	authed.GET("/users", h.List)
	authed.POST("/users/searches", h.Search)
	authed.GET("/users/:id", h.Get)
	authed.PUT("/users/:id", h.Update)
	authed.PATCH("/users/:id", h.Patch)
	authed.PUT("/users/:id/picture", h.SetPicture)

	admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
	admin.DELETE("/users/:id", h.Delete)
	admin.PATCH("/users/:id/status", h.UpdateStatus)
}
