package visit

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Repository stores visits.
type Repository struct {
	*crud.GormRepository[domain.Visit]
}

// NewRepository creates a visit Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		GormRepository: crud.NewGormRepository[domain.Visit](db, SortFields, crud.WithPredicate(predicate)),
	}
}

// DeleteByVisited removes the visits of a visitable.
func (r *Repository) DeleteByVisited(ctx context.Context, typ domain.VisitableType, id uint) error {
	return crud.MapError(r.Conn(ctx).
		Where("visited_type = ? AND visited_id = ?", typ, id).
		Delete(&domain.Visit{}).Error)
}

// DeleteByVisitor removes the visits made by visitorID.
func (r *Repository) DeleteByVisitor(ctx context.Context, visitorID uint) error {
	return crud.MapError(r.Conn(ctx).Where("visitor_id = ?", visitorID).Delete(&domain.Visit{}).Error)
}
