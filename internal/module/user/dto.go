package user

import (
	"time"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// UserDto is the public representation of a user. It never carries the
// password.
type UserDto struct {
	crud.AbstractDto
	Email          string            `json:"email"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Gender         domain.Gender     `json:"gender"`
	BirthDate      *time.Time        `json:"birth_date,omitempty"`
	Type           domain.UserType   `json:"type"`
	Status         domain.UserStatus `json:"status"`
	Roles          []string          `json:"roles"`
	Description    string            `json:"description,omitempty"`
	PhoneNumber    string            `json:"phone_number,omitempty"`
	Picture        string            `json:"picture,omitempty"`
	LastLogin      *time.Time        `json:"last_login,omitempty"`
	AnnouncementID *uint             `json:"announcement_id,omitempty"`
	GroupID        *uint             `json:"group_id,omitempty"`
}

// EntityType implements crud.EntityDto.
func (UserDto) EntityType() string { return "user" }

// RegisterRequest is the body of POST /rest/users.
type RegisterRequest struct {
	Email       string          `json:"email" binding:"required,email,max=255"`
	Password    string          `json:"password" binding:"required,min=8,max=72"`
	FirstName   string          `json:"first_name" binding:"required,max=100"`
	LastName    string          `json:"last_name" binding:"required,max=100"`
	Gender      domain.Gender   `json:"gender" binding:"omitempty,oneof=UNKNOWN MALE FEMALE"`
	BirthDate   *time.Time      `json:"birth_date"`
	Type        domain.UserType `json:"type" binding:"required,oneof=SEARCH PROPOSAL"`
	PhoneNumber string          `json:"phone_number" binding:"max=32"`
}

// UpdateRequest is the body of PUT /rest/users/{id}: every editable field.
type UpdateRequest struct {
	FirstName   string          `json:"first_name" binding:"required,max=100"`
	LastName    string          `json:"last_name" binding:"required,max=100"`
	Gender      domain.Gender   `json:"gender" binding:"required,oneof=UNKNOWN MALE FEMALE"`
	BirthDate   *time.Time      `json:"birth_date"`
	Type        domain.UserType `json:"type" binding:"required,oneof=SEARCH PROPOSAL"`
	Description string          `json:"description" binding:"max=2000"`
	PhoneNumber string          `json:"phone_number" binding:"max=32"`
}

// PatchRequest is the body of PATCH /rest/users/{id}: absent fields are kept.
type PatchRequest struct {
	FirstName   *string          `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string          `json:"last_name" binding:"omitempty,min=1,max=100"`
	Gender      *domain.Gender   `json:"gender" binding:"omitempty,oneof=UNKNOWN MALE FEMALE"`
	BirthDate   *time.Time       `json:"birth_date"`
	Type        *domain.UserType `json:"type" binding:"omitempty,oneof=SEARCH PROPOSAL"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	PhoneNumber *string          `json:"phone_number" binding:"omitempty,max=32"`
}

// StatusRequest is the body of PATCH /rest/users/{id}/status.
type StatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required,oneof=PENDING ENABLED BANNED"`
}

// ConfirmationRequest is the body of POST /rest/users/confirmation.
type ConfirmationRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}
