package visit

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Resolver loads a visitable so its owner can be checked.
type Resolver func(ctx context.Context, id uint) (any, error)

// ResolveWith adapts an entity loader, such as crud.Manager.Entity, to a
// Resolver.
func ResolveWith[E any](load func(ctx context.Context, id uint) (*E, error)) Resolver {
	return func(ctx context.Context, id uint) (any, error) {
		e, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Handler serves visit listings.
type Handler struct {
	visits    *Manager
	adm       *security.AccessDecisionManager
	resolvers map[domain.VisitableType]Resolver
}

// NewHandler creates a visit Handler. resolvers loads each visitable type.
func NewHandler(visits *Manager, adm *security.AccessDecisionManager, resolvers map[domain.VisitableType]Resolver) *Handler {
	return &Handler{visits: visits, adm: adm, resolvers: resolvers}
}

// ListByVisited handles GET /rest/{users|announcements|groups}/{id}/visits.
// Only the owner of the visitable lists its visits.
func (h *Handler) ListByVisited(typ domain.VisitableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pkg.ParamID(c, "id")
		if !ok {
			return
		}
		resolve, ok := h.resolvers[typ]
		if !ok {
			pkg.Error(c, domain.NewInvalidParameter("unknown visitable type"))
			return
		}
		ctx := c.Request.Context()
		subject, err := resolve(ctx, id)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		if err := h.adm.DenyUnlessGranted(ctx, security.ListVisits, subject); err != nil {
			pkg.Error(c, err)
			return
		}
		p, err := pkg.ParsePageable(c, SortFields)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		page, err := h.visits.ListByVisited(ctx, typ, id, p)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.List(c, page)
	}
}

// Search handles POST /rest/visits/searches.
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if !pkg.BindSearch(c, &f, SortFields) {
		return
	}
	page, err := h.visits.Search(c.Request.Context(), &f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}
