package visit

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/middleware"
)

// Module registers the visit routes.
type Module struct {
	handler *Handler
}

// NewModule creates a visit Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("visit.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the visit routes on api.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	h := m.handler
	authed := api.Group("", middleware.RequireActor())
	authed.GET("/users/:id/visits", h.ListByVisited(domain.VisitableUser))
	authed.GET("/announcements/:id/visits", h.ListByVisited(domain.VisitableAnnouncement))
	authed.GET("/groups/:id/visits", h.ListByVisited(domain.VisitableGroup))

	admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/visits/searches", h.Search)
}
