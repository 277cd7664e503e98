package invitation

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/middleware"
)

// Module registers the invitation routes.
type Module struct {
	handler *Handler
}

// NewModule creates an invitation Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("invitation.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the invitation routes on api. Every route needs
// an actor.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	h := m.handler
	authed := api.Group("", middleware.RequireActor())
	authed.GET("/announcements/:id/invitations", h.ListByInvitable(domain.InvitableAnnouncement))
	authed.POST("/announcements/:id/invitations", h.Create(domain.InvitableAnnouncement))
	authed.GET("/groups/:id/invitations", h.ListByInvitable(domain.InvitableGroup))
	authed.POST("/groups/:id/invitations", h.Create(domain.InvitableGroup))
	authed.GET("/users/:id/invitations", h.ListByRecipient)
	authed.GET("/invitations/:id", h.Get)
	authed.POST("/invitations/:id/answer", h.Answer)

	admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/invitations/searches", h.Search)
}
