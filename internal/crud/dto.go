package crud

import (
	"time"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// AbstractDto carries the identity and timestamps shared by every DTO.
type AbstractDto struct {
	ID         uint      `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUpdate time.Time `json:"last_update"`
}

// NewAbstractDto copies the base columns of an entity.
func NewAbstractDto(m domain.BaseModel) AbstractDto {
	return AbstractDto{ID: m.ID, CreatedAt: m.CreatedAt, LastUpdate: m.UpdatedAt}
}

// BaseModel returns the base columns for an entity built from the DTO.
func (d AbstractDto) BaseModel() domain.BaseModel {
	return domain.BaseModel{ID: d.ID, CreatedAt: d.CreatedAt, UpdatedAt: d.LastUpdate}
}

// EntityDto is implemented by every resource DTO.
type EntityDto interface {
	EntityType() string
}
