package invitation

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// UserLookup resolves user ids; *user.Repository implements it.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// Mapper converts invitations to DTOs and back.
type Mapper struct {
	users UserLookup
}

// NewMapper creates a Mapper checking recipients through users.
func NewMapper(users UserLookup) Mapper {
	return Mapper{users: users}
}

// ToDto maps i.
func (Mapper) ToDto(i *domain.Invitation) *InvitationDto {
	if i == nil {
		return nil
	}
	return &InvitationDto{
		AbstractDto:   crud.NewAbstractDto(i.BaseModel),
		InvitableType: i.InvitableType,
		InvitableID:   i.InvitableID,
		RecipientID:   i.RecipientID,
		SourceType:    i.SourceType,
		Status:        i.Status,
		Message:       i.Message,
	}
}

// ToEntity maps d. The recipient must exist.
func (m Mapper) ToEntity(ctx context.Context, d *InvitationDto) (*domain.Invitation, error) {
	if d == nil {
		return nil, nil
	}
	rcp, err := m.users.FindByID(ctx, d.RecipientID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidRecipient("recipient does not exist")
		}
		return nil, err
	}
	return &domain.Invitation{
		Recipient:     rcp,
		BaseModel:     d.BaseModel(),
		InvitableType: d.InvitableType,
		InvitableID:   d.InvitableID,
		RecipientID:   d.RecipientID,
		SourceType:    d.SourceType,
		Status:        d.Status,
		Message:       d.Message,
	}, nil
}
