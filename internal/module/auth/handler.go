package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Handler serves the token endpoint.
type Handler struct {
	service *Service
}

// NewHandler creates an auth Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles POST /rest/auth/tokens.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, "", token)
}
