package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Repository stores users and their mail tokens.
type Repository struct {
	*crud.GormRepository[domain.User]
}

// NewRepository creates a user Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		GormRepository: crud.NewGormRepository[domain.User](db, SortFields,
			crud.WithPreload("Announcement"),
			crud.WithPredicate(predicate),
		),
	}
}

// FindByEmail retrieves a user by email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.Conn(ctx).Preload("Announcement").
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, crud.MapError(err)
	}
	return &u, nil
}

// FindByIDs retrieves the users with the given ids, ordered by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	var users []domain.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.Conn(ctx).Preload("Announcement").Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, crud.MapError(err)
	}
	return users, nil
}

// FindByGroup returns the members of a group, ordered by id.
func (r *Repository) FindByGroup(ctx context.Context, groupID uint) ([]domain.User, error) {
	var users []domain.User
	if err := r.Conn(ctx).Preload("Announcement").Where("group_id = ?", groupID).Order("id").Find(&users).Error; err != nil {
		return nil, crud.MapError(err)
	}
	return users, nil
}

// SetGroup makes userID a member of groupID, or of no group when groupID is nil.
func (r *Repository) SetGroup(ctx context.Context, userID uint, groupID *uint) error {
	result := r.Conn(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("group_id", groupID)
	if result.Error != nil {
		return crud.MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearGroup detaches every member of groupID.
func (r *Repository) ClearGroup(ctx context.Context, groupID uint) error {
	return crud.MapError(r.Conn(ctx).Model(&domain.User{}).
		Where("group_id = ?", groupID).
		Update("group_id", nil).Error)
}

// CreateToken stores a mail token.
func (r *Repository) CreateToken(ctx context.Context, t *domain.UserToken) error {
	return crud.MapError(r.Conn(ctx).Create(t).Error)
}

// FindToken retrieves a token of the given reason.
func (r *Repository) FindToken(ctx context.Context, token string, reason domain.TokenReason) (*domain.UserToken, error) {
	var t domain.UserToken
	if err := r.Conn(ctx).Where("token = ? AND reason = ?", token, reason).First(&t).Error; err != nil {
		return nil, crud.MapError(err)
	}
	return &t, nil
}

// DeleteTokens removes every token issued to username.
func (r *Repository) DeleteTokens(ctx context.Context, username string) error {
	return crud.MapError(r.Conn(ctx).Where("username = ?", username).Delete(&domain.UserToken{}).Error)
}
