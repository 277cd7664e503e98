package user

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Handler serves the /rest/users resource.
type Handler struct {
	users  *Manager
	adm    *security.AccessDecisionManager
	files  *pkg.FileStore
	events *event.Dispatcher
}

// NewHandler creates a user Handler.
func NewHandler(users *Manager, adm *security.AccessDecisionManager, files *pkg.FileStore, events *event.Dispatcher) *Handler {
	return &Handler{users: users, adm: adm, files: files, events: events}
}

func location(id uint) string {
	return "/rest/users/" + strconv.FormatUint(uint64(id), 10)
}

// Register handles POST /rest/users.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, location(u.ID), u)
}

// Confirm handles POST /rest/users/confirmation.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmationRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.users.Confirm(c.Request.Context(), req.Token)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// List handles GET /rest/users.
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if !pkg.BindListQuery(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

// Search handles POST /rest/users/searches.
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if !pkg.BindSearch(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

func (h *Handler) search(c *gin.Context, f *Filter) {
	page, err := h.users.Search(c.Request.Context(), f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /rest/users/{id} and records the visit.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u, err := h.users.Read(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if actor := security.ActorFrom(ctx); actor != nil {
		h.events.Publish(ctx, event.ResourceVisited{
			VisitedType: domain.VisitableUser,
			VisitedID:   u.ID,
			OwnerID:     u.ID,
			VisitorID:   actor.ID,
			VisitedAt:   time.Now(),
		})
	}
	pkg.Success(c, u)
}

// Me handles GET /rest/me.
func (h *Handler) Me(c *gin.Context) {
	actor, err := security.RequireActor(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	u, err := h.users.Read(c.Request.Context(), actor.ID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// Update handles PUT /rest/users/{id}.
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// Patch handles PATCH /rest/users/{id}.
func (h *Handler) Patch(c *gin.Context) {
	id, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req PatchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.users.Patch(c.Request.Context(), id, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// UpdateStatus handles PATCH /rest/users/{id}/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.authorize(c, security.UpdateStatus)
	if !ok {
		return
	}
	var req StatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.users.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// Delete handles DELETE /rest/users/{id}. Deleting a missing user is logged
// and answered with 200.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.adm.DenyUnlessGranted(ctx, security.Delete, &domain.User{BaseModel: domain.BaseModel{ID: id}}); err != nil {
		pkg.Error(c, err)
		return
	}
	u, err := h.users.Entity(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			h.users.Logger().WarnContext(ctx, "user to delete does not exist", slog.Uint64("id", uint64(id)))
			pkg.Success(c, nil)
			return
		}
		pkg.Error(c, err)
		return
	}
	if err := h.users.Delete(ctx, id, true); err != nil {
		pkg.Error(c, err)
		return
	}
	if u.Picture != "" {
		h.removeFile(c, u.Picture)
	}
	pkg.Success(c, nil)
}

// SetPicture handles PUT /rest/users/{id}/picture with a multipart "file".
func (h *Handler) SetPicture(c *gin.Context) {
	id, ok := h.authorize(c, security.UpdatePicture)
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
	u, previous, err := h.users.SetPicture(c.Request.Context(), id, name)
	if err != nil {
		h.removeFile(c, name)
		pkg.Error(c, err)
		return
	}
	if previous != "" {
		h.removeFile(c, previous)
	}
	pkg.Success(c, u)
}

func (h *Handler) removeFile(c *gin.Context, name string) {
	if err := h.files.Remove(name); err != nil {
		h.users.Logger().WarnContext(c.Request.Context(), "picture removal failed", "file", name, "error", err)
	}
}

// authorize resolves the user of the :id parameter and checks attr on it.
func (h *Handler) authorize(c *gin.Context, attr security.Attribute) (uint, bool) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return 0, false
	}
	ctx := c.Request.Context()
	u, err := h.users.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return 0, false
	}
	if err := h.adm.DenyUnlessGranted(ctx, attr, u); err != nil {
		pkg.Error(c, err)
		return 0, false
	}
	return id, true
}
