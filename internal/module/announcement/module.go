package announcement

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/middleware"
)

// Module registers the announcement routes.
type Module struct {
	handler *Handler
}

// NewModule creates an announcement Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("announcement.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the /announcements routes on api. Reads are
// public.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	h := m.handler
	api.GET("/announcements", h.List)
	api.POST("/announcements/searches", h.Search)
	api.GET("/announcements/:id", h.Get)
	api.GET("/announcements/:id/candidates", h.Candidates)

	authed := api.Group("", middleware.RequireActor())
	authed.POST("/announcements", h.Create)
	authed.PUT("/announcements/:id", h.Update)
	authed.PATCH("/announcements/:id", h.Patch)
	authed.DELETE("/announcements/:id", h.Delete)
	authed.POST("/announcements/:id/pictures", h.AddPicture)
	authed.DELETE("/announcements/:id/pictures/:name", h.DeletePicture)
	authed.DELETE("/announcements/:id/candidates/:userId", h.RemoveCandidate)
}
