package announcement

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Repository stores announcements with their pictures and candidates.
type Repository struct {
	*crud.GormRepository[domain.Announcement]
}

// NewRepository creates an announcement Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		GormRepository: crud.NewGormRepository[domain.Announcement](db, SortFields,
			crud.WithPreload("Pictures", "Candidates"),
			crud.WithPredicate(predicate),
		),
	}
}

// FindByCreator returns the announcement published by creatorID.
func (r *Repository) FindByCreator(ctx context.Context, creatorID uint) (*domain.Announcement, error) {
	var a domain.Announcement
	err := r.Conn(ctx).Preload("Pictures").Preload("Candidates").
		Where("creator_id = ?", creatorID).First(&a).Error
	if err != nil {
		return nil, crud.MapError(err)
	}
	return &a, nil
}

// AddPicture attaches a picture row.
func (r *Repository) AddPicture(ctx context.Context, p *domain.AnnouncementPicture) error {
	return crud.MapError(r.Conn(ctx).Create(p).Error)
}

// DeletePicture removes the picture called name from the announcement.
func (r *Repository) DeletePicture(ctx context.Context, announcementID uint, name string) error {
	result := r.Conn(ctx).Where("announcement_id = ? AND file_name = ?", announcementID, name).
		Delete(&domain.AnnouncementPicture{})
	if result.Error != nil {
		return crud.MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePictures removes every picture row of the announcement.
func (r *Repository) DeletePictures(ctx context.Context, announcementID uint) error {
	return crud.MapError(r.Conn(ctx).Where("announcement_id = ?", announcementID).
		Delete(&domain.AnnouncementPicture{}).Error)
}

// AddCandidate links userID to the announcement as a candidate.
func (r *Repository) AddCandidate(ctx context.Context, announcementID, userID uint) error {
	return crud.MapError(r.Conn(ctx).Create(&domain.AnnouncementCandidate{
		AnnouncementID: announcementID,
		UserID:         userID,
	}).Error)
}

// RemoveCandidate unlinks userID from the announcement.
func (r *Repository) RemoveCandidate(ctx context.Context, announcementID, userID uint) error {
	result := r.Conn(ctx).Where("announcement_id = ? AND user_id = ?", announcementID, userID).
		Delete(&domain.AnnouncementCandidate{})
	if result.Error != nil {
		return crud.MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveCandidates unlinks every candidate of the announcement.
func (r *Repository) RemoveCandidates(ctx context.Context, announcementID uint) error {
	return crud.MapError(r.Conn(ctx).Where("announcement_id = ?", announcementID).
		Delete(&domain.AnnouncementCandidate{}).Error)
}

// RemoveCandidacies unlinks userID from every announcement.
func (r *Repository) RemoveCandidacies(ctx context.Context, userID uint) error {
	return crud.MapError(r.Conn(ctx).Where("user_id = ?", userID).
		Delete(&domain.AnnouncementCandidate{}).Error)
}
