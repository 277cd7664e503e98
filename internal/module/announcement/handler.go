package announcement

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Handler serves the /rest/announcements resource.
type Handler struct {
	announcements *Manager
	adm           *security.AccessDecisionManager
	files         *pkg.FileStore
	events        *event.Dispatcher
}

// NewHandler creates an announcement Handler.
func NewHandler(announcements *Manager, adm *security.AccessDecisionManager, files *pkg.FileStore, events *event.Dispatcher) *Handler {
	return &Handler{announcements: announcements, adm: adm, files: files, events: events}
}

func location(id uint) string {
	return "/rest/announcements/" + strconv.FormatUint(uint64(id), 10)
}

// List handles GET /rest/announcements.
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if !pkg.BindListQuery(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

// Search handles POST /rest/announcements/searches.
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if !pkg.BindSearch(c, &f, SortFields) {
		return
	}
	h.search(c, &f)
}

func (h *Handler) search(c *gin.Context, f *Filter) {
	page, err := h.announcements.Search(c.Request.Context(), f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Create handles POST /rest/announcements for the current actor.
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
	a, err := h.announcements.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, location(a.ID), a)
}

// Get handles GET /rest/announcements/{id}. Authenticated reads are recorded
// as visits.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a, err := h.announcements.Read(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if actor := security.ActorFrom(ctx); actor != nil {
		h.events.Publish(ctx, event.ResourceVisited{
			VisitedType: domain.VisitableAnnouncement,
			VisitedID:   a.ID,
			OwnerID:     a.CreatorID,
			VisitorID:   actor.ID,
			VisitedAt:   time.Now(),
		})
	}
	pkg.Success(c, a)
}

// Update handles PUT /rest/announcements/{id}.
func (h *Handler) Update(c *gin.Context) {
	a, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.announcements.Update(c.Request.Context(), a.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Patch handles PATCH /rest/announcements/{id}.
func (h *Handler) Patch(c *gin.Context) {
	a, ok := h.authorize(c, security.Update)
	if !ok {
		return
	}
	var req PatchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.announcements.Patch(c.Request.Context(), a.ID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Delete handles DELETE /rest/announcements/{id}.
func (h *Handler) Delete(c *gin.Context) {
	a, ok := h.authorize(c, security.Delete)
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), a.ID, true); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// AddPicture handles POST /rest/announcements/{id}/pictures with a multipart
// "file".
func (h *Handler) AddPicture(c *gin.Context) {
	a, ok := h.authorize(c, security.UpdatePicture)
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
	p, err := h.announcements.AddPicture(c.Request.Context(), a.ID, name)
	if err != nil {
		h.removeFile(c, name)
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, "/uploads/"+p.FileName, p)
}

// DeletePicture handles DELETE /rest/announcements/{id}/pictures/{name}.
func (h *Handler) DeletePicture(c *gin.Context) {
	a, ok := h.authorize(c, security.UpdatePicture)
	if !ok {
		return
	}
	if err := h.announcements.DeletePicture(c.Request.Context(), a.ID, c.Param("name")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Candidates handles GET /rest/announcements/{id}/candidates.
func (h *Handler) Candidates(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	users, err := h.announcements.Candidates(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, users)
}

// RemoveCandidate handles DELETE /rest/announcements/{id}/candidates/{userId}.
func (h *Handler) RemoveCandidate(c *gin.Context) {
	a, ok := h.authorize(c, security.RemoveCandidate)
	if !ok {
		return
	}
	userID, ok := pkg.ParamID(c, "userId")
	if !ok {
		return
	}
	if err := h.announcements.RemoveCandidate(c.Request.Context(), a.ID, userID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// authorize resolves the announcement of the :id parameter and checks attr
// on it.
func (h *Handler) authorize(c *gin.Context, attr security.Attribute) (*domain.Announcement, bool) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	a, err := h.announcements.Entity(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	if err := h.adm.DenyUnlessGranted(ctx, attr, a); err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return a, true
}

func (h *Handler) removeFile(c *gin.Context, name string) {
	if err := h.files.Remove(name); err != nil {
		h.announcements.Logger().WarnContext(c.Request.Context(), "picture removal failed", "file", name, "error", err)
	}
}
