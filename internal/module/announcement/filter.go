package announcement

import (
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Filter selects announcements.
type Filter struct {
	pkg.Pageable
	RentPriceStart  *int                      `json:"rent_price_start" form:"rent_price_start" binding:"omitempty,gte=0"`
	RentPriceEnd    *int                      `json:"rent_price_end" form:"rent_price_end" binding:"omitempty,gte=0"`
	Types           []domain.AnnouncementType `json:"types" form:"types" binding:"omitempty,dive,oneof=RENT SUBLEASE SHARING"`
	Status          domain.AnnouncementStatus `json:"status" form:"status" binding:"omitempty,oneof=OPEN CLOSED FILLED"`
	Location        string                    `json:"location" form:"location" binding:"max=100"`
	StartDateAfter  *time.Time                `json:"start_date_after" form:"start_date_after"`
	StartDateBefore *time.Time                `json:"start_date_before" form:"start_date_before"`
	WithDescription bool                      `json:"with_description" form:"with_description"`
	CreatorID       uint                      `json:"creator_id" form:"creator_id"`
}

// SortFields are the sortable announcement properties.
var SortFields = pkg.SortFields{
	"id":         "id",
	"title":      "title",
	"type":       "type",
	"status":     "status",
	"rent_price": "rent_price",
	"start_date": "start_date",
	"created_at": "created_at",
}

func predicate(db *gorm.DB, s pkg.Searchable) *gorm.DB {
	f, ok := s.(*Filter)
	if !ok {
		return db
	}
	if f.RentPriceStart != nil {
		db = db.Where("rent_price >= ?", *f.RentPriceStart)
	}
	if f.RentPriceEnd != nil {
		db = db.Where("rent_price <= ?", *f.RentPriceEnd)
	}
	if len(f.Types) > 0 {
		db = db.Where("type IN ?", f.Types)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Location != "" {
		like := "%" + f.Location + "%"
		db = db.Where("(location_city LIKE ? OR location_zip_code LIKE ?)", like, like)
	}
	if f.StartDateAfter != nil {
		db = db.Where("start_date >= ?", *f.StartDateAfter)
	}
	if f.StartDateBefore != nil {
		db = db.Where("start_date <= ?", *f.StartDateBefore)
	}
	if f.WithDescription {
		db = db.Where("description IS NOT NULL AND description <> ''")
	}
	if f.CreatorID != 0 {
		db = db.Where("creator_id = ?", f.CreatorID)
	}
	return db
}
