package visit

import (
	"time"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// VisitDto is the public representation of a visit.
type VisitDto struct {
	crud.AbstractDto
	VisitedType domain.VisitableType `json:"visited_type"`
	VisitedID   uint                 `json:"visited_id"`
	VisitorID   uint                 `json:"visitor_id"`
	VisitedAt   time.Time            `json:"visited_at"`
}

// EntityType implements crud.EntityDto.
func (VisitDto) EntityType() string { return "visit" }
