package invitation

import (
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Filter selects invitations.
type Filter struct {
	pkg.Pageable
	InvitableType  domain.InvitableType        `json:"invitable_type" form:"invitable_type" binding:"omitempty,oneof=announcement group"`
	InvitableID    uint                        `json:"invitable_id" form:"invitable_id"`
	RecipientID    uint                        `json:"recipient_id" form:"recipient_id"`
	Status         domain.InvitationStatus     `json:"status" form:"status" binding:"omitempty,oneof=WAITING ACCEPTED REFUSED"`
	SourceType     domain.InvitationSourceType `json:"source_type" form:"source_type" binding:"omitempty,oneof=INVITABLE SEARCHER"`
	CreatedAtSince *time.Time                  `json:"created_at_since" form:"created_at_since"`
	CreatedAtUntil *time.Time                  `json:"created_at_until" form:"created_at_until"`
}

// SortFields are the sortable invitation properties.
var SortFields = pkg.SortFields{
	"id":             "id",
	"created_at":     "created_at",
	"status":         "status",
	"invitable_type": "invitable_type",
}

func predicate(db *gorm.DB, s pkg.Searchable) *gorm.DB {
	f, ok := s.(*Filter)
	if !ok {
		return db
	}
	if f.InvitableType != "" {
		db = db.Where("invitable_type = ?", f.InvitableType)
	}
	if f.InvitableID != 0 {
		db = db.Where("invitable_id = ?", f.InvitableID)
	}
	if f.RecipientID != 0 {
		db = db.Where("recipient_id = ?", f.RecipientID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.SourceType != "" {
		db = db.Where("source_type = ?", f.SourceType)
	}
	if f.CreatedAtSince != nil {
		db = db.Where("created_at >= ?", *f.CreatedAtSince)
	}
	if f.CreatedAtUntil != nil {
		db = db.Where("created_at <= ?", *f.CreatedAtUntil)
	}
	return db
}
