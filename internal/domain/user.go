package domain

import (
	"slices"
	"strings"
	"time"
)

// User represents an account of the platform.
type User struct {
	BaseModel
	Email        string     `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	FirstName    string     `gorm:"size:100;not null"`
	LastName     string     `gorm:"size:100;not null"`
	Gender       Gender     `gorm:"size:16;not null;default:UNKNOWN"`
	BirthDate    *time.Time `gorm:"type:date"`
	Type         UserType   `gorm:"size:16;not null;default:SEARCH;index"`
	Status       UserStatus `gorm:"size:16;not null;default:PENDING;index"`
	Roles        string     `gorm:"size:255"`
	Description  string     `gorm:"type:text"`
	PhoneNumber  string     `gorm:"size:32"`
	Picture      string     `gorm:"size:255"`
	LastLogin    *time.Time
	GroupID      *uint `gorm:"index"`

	// Announcement is the offer the user published, if any.
	Announcement *Announcement `gorm:"foreignKey:CreatorID"`
}

// RoleList returns the roles of the user. Every user has RoleUser.
func (u *User) RoleList() []string {
	roles := []string{RoleUser}
	for _, r := range strings.Split(u.Roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.RoleList(), role)
}

// DisplayName returns "First Last".
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserToken is a single-use token sent by mail (registration confirmation,
// lost password).
type UserToken struct {
	BaseModel
	Token     string      `gorm:"size:64;uniqueIndex;not null"`
	Reason    TokenReason `gorm:"size:32;not null"`
	Username  string      `gorm:"size:255;not null;index"`
	ExpiresAt time.Time   `gorm:"not null"`
}

// Expired reports whether the token can no longer be used at now.
func (t *UserToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
