package visit

import (
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Filter selects visits.
type Filter struct {
	pkg.Pageable
	VisitorID      uint                 `json:"visitor_id" form:"visitor_id"`
	VisitedType    domain.VisitableType `json:"visited_type" form:"visited_type" binding:"omitempty,oneof=announcement group user"`
	VisitedID      uint                 `json:"visited_id" form:"visited_id"`
	VisitedAtSince *time.Time           `json:"visited_at_since" form:"visited_at_since"`
	VisitedAtUntil *time.Time           `json:"visited_at_until" form:"visited_at_until"`
}

// SortFields are the sortable visit properties.
var SortFields = pkg.SortFields{
	"id":           "id",
	"visited_at":   "visited_at",
	"visited_type": "visited_type",
	"visitor_id":   "visitor_id",
}

func predicate(db *gorm.DB, s pkg.Searchable) *gorm.DB {
	f, ok := s.(*Filter)
	if !ok {
		return db
	}
	if f.VisitorID != 0 {
		db = db.Where("visitor_id = ?", f.VisitorID)
	}
	if f.VisitedType != "" {
		db = db.Where("visited_type = ?", f.VisitedType)
	}
	if f.VisitedID != 0 {
		db = db.Where("visited_id = ?", f.VisitedID)
	}
	if f.VisitedAtSince != nil {
		db = db.Where("visited_at >= ?", *f.VisitedAtSince)
	}
	if f.VisitedAtUntil != nil {
		db = db.Where("visited_at <= ?", *f.VisitedAtUntil)
	}
	return db
}
