package group

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/middleware"
)

// Module registers the group routes.
type Module struct {
	handler *Handler
}

// NewModule creates a group Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("group.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the /groups routes on api. Reads are public.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	h := m.handler
	api.GET("/groups", h.List)
	api.POST("/groups/searches", h.Search)
	api.GET("/groups/:id", h.Get)
	api.GET("/groups/:id/members", h.Members)

	authed := api.Group("", middleware.RequireActor())
	authed.POST("/groups", h.Create)
	authed.PUT("/groups/:id", h.Update)
	authed.PATCH("/groups/:id", h.Patch)
	authed.DELETE("/groups/:id", h.Delete)
	authed.POST("/groups/:id/members", h.AddMember)
	authed.DELETE("/groups/:id/members/:userId", h.RemoveMember)
	authed.GET("/groups/:id/messages", h.Messages)
	authed.POST("/groups/:id/messages", h.PostMessage)
	authed.PUT("/groups/:id/picture", h.SetPicture)
}
