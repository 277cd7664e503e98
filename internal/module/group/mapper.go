package group

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// UserLookup resolves user ids; *user.Repository implements it.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)
}

// Mapper converts groups to DTOs and back.
type Mapper struct {
	users UserLookup
}

// NewMapper creates a Mapper resolving creators and members through users.
func NewMapper(users UserLookup) Mapper {
	return Mapper{users: users}
}

// ToDto maps g; the member count is derived from the preloaded members.
func (Mapper) ToDto(g *domain.Group) *GroupDto {
	if g == nil {
		return nil
	}
	d := &GroupDto{
		AbstractDto:  crud.NewAbstractDto(g.BaseModel),
		Name:         g.Name,
		Description:  g.Description,
		Budget:       g.Budget,
		Status:       g.Status,
		CreatorID:    g.CreatorID,
		Picture:      g.Picture,
		CountMembers: len(g.Members),
		MemberIDs:    make([]uint, 0, len(g.Members)),
	}
	for _, m := range g.Members {
		d.MemberIDs = append(d.MemberIDs, m.ID)
	}
	return d
}

// ToEntity maps d, loading the creator and the members from storage.
func (m Mapper) ToEntity(ctx context.Context, d *GroupDto) (*domain.Group, error) {
	if d == nil {
		return nil, nil
	}
	creator, err := m.users.FindByID(ctx, d.CreatorID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidCreator("creator does not exist")
		}
		return nil, err
	}
	g := &domain.Group{
		Creator:     creator,
		BaseModel:   d.BaseModel(),
		Name:        d.Name,
		Description: d.Description,
		Budget:      d.Budget,
		Status:      d.Status,
		CreatorID:   d.CreatorID,
		Picture:     d.Picture,
	}
	if len(d.MemberIDs) > 0 {
		members, err := m.users.FindByIDs(ctx, d.MemberIDs)
		if err != nil {
			return nil, err
		}
		if len(members) != len(d.MemberIDs) {
			return nil, domain.NewInvalidParameter("unknown member")
		}
		g.Members = members
	}
	return g, nil
}

func messageDto(m *domain.GroupMessage) MessageDto {
	return MessageDto{
		AbstractDto: crud.NewAbstractDto(m.BaseModel),
		GroupID:     m.GroupID,
		AuthorID:    m.AuthorID,
		Content:     m.Content,
	}
}
