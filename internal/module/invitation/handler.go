package invitation

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Handler serves invitations, both nested under their invitable and at
// /rest/invitations.
type Handler struct {
	invitations *Manager
	users       *user.Manager
	adm         *security.AccessDecisionManager
}

// NewHandler creates an invitation Handler.
func NewHandler(invitations *Manager, users *user.Manager, adm *security.AccessDecisionManager) *Handler {
	return &Handler{invitations: invitations, users: users, adm: adm}
}

func location(id uint) string {
	return "/rest/invitations/" + strconv.FormatUint(uint64(id), 10)
}

// ListByInvitable handles GET /rest/{announcements|groups}/{id}/invitations.
// Only the owner of the invitable lists its invitations.
func (h *Handler) ListByInvitable(typ domain.InvitableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pkg.ParamID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		subject, err := h.invitable(ctx, typ, id)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		if err := h.adm.DenyUnlessGranted(ctx, security.ListInvitations, subject); err != nil {
			pkg.Error(c, err)
			return
		}
		p, err := pkg.ParsePageable(c, SortFields)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		page, err := h.invitations.ListByInvitable(ctx, typ, id, p)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.List(c, page)
	}
}

// Create handles POST /rest/{announcements|groups}/{id}/invitations.
func (h *Handler) Create(typ domain.InvitableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pkg.ParamID(c, "id")
		if !ok {
			return
		}
		actor, err := security.RequireActor(c.Request.Context())
		if err != nil {
			pkg.Error(c, err)
			return
		}
		var req CreateRequest
		if !pkg.BindAndValidate(c, &req) {
			return
		}
		inv, err := h.invitations.Create(c.Request.Context(), actor.ID, typ, id, req)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.Created(c, location(inv.ID), inv)
	}
}

// ListByRecipient handles GET /rest/users/{id}/invitations.
func (h *Handler) ListByRecipient(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u, err := h.users.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.adm.DenyUnlessGranted(ctx, security.ListInvitations, u); err != nil {
		pkg.Error(c, err)
		return
	}
	p, err := pkg.ParsePageable(c, SortFields)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	page, err := h.invitations.ListByRecipient(ctx, id, p)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /rest/invitations/{id}.
func (h *Handler) Get(c *gin.Context) {
	inv, ok := h.authorize(c, security.Read)
	if !ok {
		return
	}
	pkg.Success(c, h.invitations.Mapper().ToDto(inv))
}

// Answer handles POST /rest/invitations/{id}/answer.
func (h *Handler) Answer(c *gin.Context) {
	inv, ok := h.authorize(c, security.Answer)
	if !ok {
		return
	}
	var req AnswerRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	actor := security.ActorFrom(c.Request.Context())
	d, err := h.invitations.Answer(c.Request.Context(), inv.ID, actor.ID, req.Status)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Search handles POST /rest/invitations/searches.
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if !pkg.BindSearch(c, &f, SortFields) {
		return
	}
	page, err := h.invitations.Search(c.Request.Context(), &f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

func (h *Handler) invitable(ctx context.Context, typ domain.InvitableType, id uint) (any, error) {
	if typ == domain.InvitableGroup {
		return h.invitations.groups.Entity(ctx, id)
	}
	return h.invitations.announcements.Entity(ctx, id)
}

// authorize resolves the invitation of the :id parameter and checks attr on
// it against the owner of its invitable.
func (h *Handler) authorize(c *gin.Context, attr security.Attribute) (*domain.Invitation, bool) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	inv, err := h.invitations.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	target, err := h.invitations.Invitable(ctx, inv.InvitableType, inv.InvitableID)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	if err := h.adm.DenyUnlessGranted(ctx, attr, Target{Invitation: inv, OwnerID: target.OwnerID}); err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return inv, true
}
