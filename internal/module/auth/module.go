package auth

import "github.com/gin-gonic/gin"

// Module registers the authentication routes.
type Module struct {
	handler *Handler
}

// NewModule creates an auth Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers POST /auth/tokens on api.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/auth/tokens", m.handler.Login)
}
