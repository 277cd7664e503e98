package visit

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Mapper converts visits to DTOs and back.
type Mapper struct{}

// ToDto maps v.
func (Mapper) ToDto(v *domain.Visit) *VisitDto {
	if v == nil {
		return nil
	}
	return &VisitDto{
		AbstractDto: crud.NewAbstractDto(v.BaseModel),
		VisitedType: v.VisitedType,
		VisitedID:   v.VisitedID,
		VisitorID:   v.VisitorID,
		VisitedAt:   v.VisitedAt,
	}
}

// ToEntity maps d.
func (Mapper) ToEntity(_ context.Context, d *VisitDto) (*domain.Visit, error) {
	if d == nil {
		return nil, nil
	}
	return &domain.Visit{
		BaseModel:   d.BaseModel(),
		VisitedType: d.VisitedType,
		VisitedID:   d.VisitedID,
		VisitorID:   d.VisitorID,
		VisitedAt:   d.VisitedAt,
	}, nil
}
