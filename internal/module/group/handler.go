package group

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Handler serves the /rest/groups resource.
type Handler struct {
	groups *Manager
	adm    *security.AccessDecisionManager
	files  *pkg.FileStore
	events *event.Dispatcher
}

// NewHandler creates a group Handler.
func NewHandler(groups *Manager, adm *security.AccessDecisionManager, files *pkg.FileStore, events *event.Dispatcher) *Handler {
	return &Handler{groups: groups, adm: adm, files: files, events: events}
}

func location(id uint) string {
	return "/rest/groups/" + strconv.FormatUint(uint64(id), 10)
}

// List handles GET /rest/groups.
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if !pkg.BindListQuery(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

// Search handles POST /rest/groups/searches.
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if !pkg.BindSearch(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

func (h *Handler) search(c *gin.Context, f *Filter) {
	page, err := h.groups.Search(c.Request.Context(), f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Create handles POST /rest/groups.
func (h *Handler) Create(c *gin.Context) {
	actor, err := security.RequireActor(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	g, err := h.groups.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, location(g.ID), g)
}

// Get handles GET /rest/groups/{id}.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	g, err := h.groups.Read(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if actor := security.ActorFrom(ctx); actor != nil {
		h.events.Publish(ctx, event.ResourceVisited{
			VisitedType: domain.VisitableGroup,
			VisitedID:   g.ID,
			OwnerID:     g.CreatorID,
			VisitorID:   actor.ID,
			VisitedAt:   time.Now(),
		})
	}
	pkg.Success(c, g)
}

// Update handles PUT /rest/groups/{id}.
func (h *Handler) Update(c *gin.Context) {
	g, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.groups.Update(c.Request.Context(), g.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Patch handles PATCH /rest/groups/{id}.
func (h *Handler) Patch(c *gin.Context) {
	g, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req PatchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.groups.Patch(c.Request.Context(), g.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Delete handles DELETE /rest/groups/{id}.
func (h *Handler) Delete(c *gin.Context) {
	g, ok := h.authorize(c, security.Delete)
	if !ok {
		return
	}
	if err := h.groups.Delete(c.Request.Context(), g.ID, true); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Members handles GET /rest/groups/{id}/members.
func (h *Handler) Members(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	members, err := h.groups.Members(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, members)
}

// AddMember handles POST /rest/groups/{id}/members.
func (h *Handler) AddMember(c *gin.Context) {
	g, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req MemberRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.groups.AddMember(c.Request.Context(), g.ID, req.UserID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// RemoveMember handles DELETE /rest/groups/{id}/members/{userId}. The
// creator removes anyone; a member removes themselves.
func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	userID, ok := pkg.ParamID(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	g, err := h.groups.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.adm.DenyUnlessGranted(ctx, security.RemoveMember, Membership{Group: g, UserID: userID}); err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.groups.RemoveMember(ctx, id, userID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Messages handles GET /rest/groups/{id}/messages.
func (h *Handler) Messages(c *gin.Context) {
	g, ok := h.authorize(c, security.ListMessages)
	if !ok {
		return
	}
	p, err := pkg.ParsePageable(c, MessageSortFields)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	page, err := h.groups.Messages(c.Request.Context(), g.ID, p)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// PostMessage handles POST /rest/groups/{id}/messages.
func (h *Handler) PostMessage(c *gin.Context) {
	g, ok := h.authorize(c, security.PostMessage)
	if !ok {
		return
	}
	var req MessageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	actor := security.ActorFrom(c.Request.Context())
	msg, err := h.groups.PostMessage(c.Request.Context(), g.ID, actor.ID, req.Content)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, location(g.ID)+"/messages", msg)
}

// SetPicture handles PUT /rest/groups/{id}/picture with a multipart "file".
func (h *Handler) SetPicture(c *gin.Context) {
	g, ok := h.authorize(c, security.UpdatePicture)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		pkg.Error(c, domain.NewValidationError("missing picture", map[string]string{"file": "required"}))
		return
	}
	name, err := h.files.SaveImage(fh)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	d, previous, err := h.groups.SetPicture(c.Request.Context(), g.ID, name)
	if err != nil {
		h.removeFile(c, name)
		pkg.Error(c, err)
		return
	}
	if previous != "" {
		h.removeFile(c, previous)
	}
	pkg.Success(c, d)
}

// authorize resolves the group of the :id parameter and checks attr on it.
func (h *Handler) authorize(c *gin.Context, attr security.Attribute) (*domain.Group, bool) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	g, err := h.groups.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	if err := h.adm.DenyUnlessGranted(ctx, attr, g); err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return g, true
}

func (h *Handler) removeFile(c *gin.Context, name string) {
	if err := h.files.Remove(name); err != nil {
		h.groups.Logger().WarnContext(c.Request.Context(), "picture removal failed", "file", name, "error", err)
	}
}
