package group

import (
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Filter selects groups.
type Filter struct {
	pkg.Pageable
	BudgetMin               *int               `json:"budget_min" form:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax               *int               `json:"budget_max" form:"budget_max" binding:"omitempty,gte=0"`
	Status                  domain.GroupStatus `json:"status" form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
	NameContains            string             `json:"name_contains" form:"name_contains" binding:"max=100"`
	WithDescription         bool               `json:"with_description" form:"with_description"`
	CountMembersGreaterThan *int               `json:"count_members_gt" form:"count_members_gt" binding:"omitempty,gte=0"`
	CountMembersLessThan    *int               `json:"count_members_lt" form:"count_members_lt" binding:"omitempty,gte=1"`
	CreatorID               uint               `json:"creator_id" form:"creator_id"`
}

// SortFields are the sortable group properties.
var SortFields = pkg.SortFields{
	"id":         "id",
	"name":       "name",
	"budget":     "budget",
	"status":     "status",
	"created_at": "created_at",
}

const memberCount = "(SELECT COUNT(*) FROM users WHERE users.group_id = groups.id)"

func predicate(db *gorm.DB, s pkg.Searchable) *gorm.DB {
	f, ok := s.(*Filter)
	if !ok {
		return db
	}
	if f.BudgetMin != nil {
		db = db.Where("budget >= ?", *f.BudgetMin)
	}
	if f.BudgetMax != nil {
		db = db.Where("budget <= ?", *f.BudgetMax)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.NameContains != "" {
		db = db.Where("name LIKE ?", "%"+f.NameContains+"%")
	}
	if f.WithDescription {
		db = db.Where("description IS NOT NULL AND description <> ''")
	}
	if f.CountMembersGreaterThan != nil {
		db = db.Where(memberCount+" > ?", *f.CountMembersGreaterThan)
	}
	if f.CountMembersLessThan != nil {
		db = db.Where(memberCount+" < ?", *f.CountMembersLessThan)
	}
	if f.CreatorID != 0 {
		db = db.Where("creator_id = ?", f.CreatorID)
	}
	return db
}
