package invitation

import (
	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// InvitationDto is the public representation of an invitation.
type InvitationDto struct {
	crud.AbstractDto
	InvitableType domain.InvitableType        `json:"invitable_type"`
	InvitableID   uint                        `json:"invitable_id"`
	RecipientID   uint                        `json:"recipient_id"`
	SourceType    domain.InvitationSourceType `json:"source_type"`
	Status        domain.InvitationStatus     `json:"status"`
	Message       string                      `json:"message,omitempty"`
}

// EntityType implements crud.EntityDto.
func (InvitationDto) EntityType() string { return "invitation" }

// CreateRequest is the body of POST /rest/{announcements|groups}/{id}/invitations.
// The owner of the invitable names a recipient; anyone else applies and
// leaves it empty.
type CreateRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Message     string `json:"message" binding:"max=2000"`
}

// AnswerRequest is the body of POST /rest/invitations/{id}/answer.
type AnswerRequest struct {
	Status domain.InvitationStatus `json:"status" binding:"required,oneof=ACCEPTED REFUSED"`
}
