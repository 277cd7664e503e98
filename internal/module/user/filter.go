package user

import (
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Filter selects users. It binds from the query string of GET /rest/users
// and from the body of POST /rest/users/searches.
type Filter struct {
	pkg.Pageable
	Type           domain.UserType   `json:"type" form:"type" binding:"omitempty,oneof=SEARCH PROPOSAL"`
	Status         domain.UserStatus `json:"status" form:"status" binding:"omitempty,oneof=PENDING ENABLED BANNED"`
	Gender         domain.Gender     `json:"gender" form:"gender" binding:"omitempty,oneof=UNKNOWN MALE FEMALE"`
	NameContains   string            `json:"name_contains" form:"name_contains" binding:"max=100"`
	CreatedAtSince *time.Time        `json:"created_at_since" form:"created_at_since"`
	CreatedAtUntil *time.Time        `json:"created_at_until" form:"created_at_until"`
}

// SortFields are the sortable user properties.
var SortFields = pkg.SortFields{
	"id":         "id",
	"email":      "email",
	"first_name": "first_name",
	"last_name":  "last_name",
	"type":       "type",
	"status":     "status",
	"created_at": "created_at",
	"last_login": "last_login",
}

func predicate(db *gorm.DB, s pkg.Searchable) *gorm.DB {
	f, ok := s.(*Filter)
	if !ok {
		return db
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Gender != "" {
		db = db.Where("gender = ?", f.Gender)
	}
	if f.NameContains != "" {
		like := "%" + f.NameContains + "%"
		db = db.Where("(first_name LIKE ? OR last_name LIKE ?)", like, like)
	}
	if f.CreatedAtSince != nil {
		db = db.Where("created_at >= ?", *f.CreatedAtSince)
	}
	if f.CreatedAtUntil != nil {
		db = db.Where("created_at <= ?", *f.CreatedAtUntil)
	}
	return db
}
