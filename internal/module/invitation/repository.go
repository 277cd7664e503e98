package invitation

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Repository stores invitations.
type Repository struct {
	*crud.GormRepository[domain.Invitation]
}

// NewRepository creates an invitation Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		GormRepository: crud.NewGormRepository[domain.Invitation](db, SortFields, crud.WithPredicate(predicate)),
	}
}

// HasWaiting reports whether recipientID has a WAITING invitation for the
// invitable.
func (r *Repository) HasWaiting(ctx context.Context, typ domain.InvitableType, invitableID, recipientID uint) (bool, error) {
	var n int64
	err := r.Conn(ctx).Model(&domain.Invitation{}).
		Where("invitable_type = ? AND invitable_id = ? AND recipient_id = ? AND status = ?",
			typ, invitableID, recipientID, domain.InvitationWaiting).
		Count(&n).Error
	if err != nil {
		return false, crud.MapError(err)
	}
	return n > 0, nil
}

// RefuseWaiting refuses the WAITING invitations of recipientID for invitables
// of typ, except the invitation exceptID. It returns the number refused.
func (r *Repository) RefuseWaiting(ctx context.Context, recipientID uint, typ domain.InvitableType, exceptID uint) (int64, error) {
	result := r.Conn(ctx).Model(&domain.Invitation{}).
		Where("recipient_id = ? AND invitable_type = ? AND status = ? AND id <> ?",
			recipientID, typ, domain.InvitationWaiting, exceptID).
		Update("status", domain.InvitationRefused)
	if result.Error != nil {
		return 0, crud.MapError(result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByInvitable removes every invitation of an invitable.
func (r *Repository) DeleteByInvitable(ctx context.Context, typ domain.InvitableType, invitableID uint) error {
	return crud.MapError(r.Conn(ctx).
		Where("invitable_type = ? AND invitable_id = ?", typ, invitableID).
		Delete(&domain.Invitation{}).Error)
}

// DeleteByRecipient removes every invitation of a recipient.
func (r *Repository) DeleteByRecipient(ctx context.Context, recipientID uint) error {
	return crud.MapError(r.Conn(ctx).Where("recipient_id = ?", recipientID).Delete(&domain.Invitation{}).Error)
}
