package group

import (
	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// GroupDto is the public representation of a group.
type GroupDto struct {
	crud.AbstractDto
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Budget       int                `json:"budget"`
	Status       domain.GroupStatus `json:"status"`
	CreatorID    uint               `json:"creator_id"`
	Picture      string             `json:"picture,omitempty"`
	CountMembers int                `json:"count_members"`
	MemberIDs    []uint             `json:"member_ids"`
}

// EntityType implements crud.EntityDto.
func (GroupDto) EntityType() string { return "group" }

// MessageDto is a message of a group conversation.
type MessageDto struct {
	crud.AbstractDto
	GroupID  uint   `json:"group_id"`
	AuthorID uint   `json:"author_id"`
	Content  string `json:"content"`
}

// EntityType implements crud.EntityDto.
func (MessageDto) EntityType() string { return "group_message" }

// CreateRequest is the body of POST /rest/groups.
type CreateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
	Budget      int    `json:"budget" binding:"gte=0"`
}

// UpdateRequest is the body of PUT /rest/groups/{id}.
type UpdateRequest struct {
	CreateRequest
	Status domain.GroupStatus `json:"status" binding:"required,oneof=OPEN CLOSED"`
}

// PatchRequest is the body of PATCH /rest/groups/{id}.
type PatchRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	Budget      *int                `json:"budget" binding:"omitempty,gte=0"`
	Status      *domain.GroupStatus `json:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

// MemberRequest is the body of POST /rest/groups/{id}/members.
type MemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// MessageRequest is the body of POST /rest/groups/{id}/messages.
type MessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}
