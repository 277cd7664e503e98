package group

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Repository stores groups and their messages. Membership is stored on the
// users table.
type Repository struct {
	*crud.GormRepository[domain.Group]
}

// NewRepository creates a group Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		GormRepository: crud.NewGormRepository[domain.Group](db, SortFields,
			crud.WithPreload("Members"),
			crud.WithPredicate(predicate),
		),
	}
}

// FindByCreator returns the group created by creatorID.
func (r *Repository) FindByCreator(ctx context.Context, creatorID uint) (*domain.Group, error) {
	var g domain.Group
	if err := r.Conn(ctx).Preload("Members").Where("creator_id = ?", creatorID).First(&g).Error; err != nil {
		return nil, crud.MapError(err)
	}
	return &g, nil
}

// CreateMessage stores a message.
func (r *Repository) CreateMessage(ctx context.Context, m *domain.GroupMessage) error {
	return crud.MapError(r.Conn(ctx).Create(m).Error)
}

// FindMessages returns one page of the messages of a group, plus their count.
func (r *Repository) FindMessages(ctx context.Context, groupID uint, p pkg.Pageable) ([]domain.GroupMessage, int64, error) {
	base := r.Conn(ctx).Model(&domain.GroupMessage{}).Where("group_id = ?", groupID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, crud.MapError(err)
	}
	var rows []domain.GroupMessage
	err := base.Session(&gorm.Session{}).
		Scopes(pkg.Sort(p, MessageSortFields), pkg.Paginate(p)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, crud.MapError(err)
	}
	return rows, total, nil
}

// DeleteMessages removes the conversation of a group.
func (r *Repository) DeleteMessages(ctx context.Context, groupID uint) error {
	return crud.MapError(r.Conn(ctx).Where("group_id = ?", groupID).Delete(&domain.GroupMessage{}).Error)
}

// MessageSortFields are the sortable message properties.
var MessageSortFields = pkg.SortFields{
	"id":         "id",
	"created_at": "created_at",
	"author_id":  "author_id",
}
