package domain

import "time"

// Invitation links an invitable (announcement or group) to a recipient user.
type Invitation struct {
	BaseModel
	InvitableType InvitableType        `gorm:"size:32;not null;index:idx_invitation_invitable"`
	InvitableID   uint                 `gorm:"not null;index:idx_invitation_invitable"`
	RecipientID   uint                 `gorm:"not null;index"`
	SourceType    InvitationSourceType `gorm:"size:16;not null"`
	Status        InvitationStatus     `gorm:"size:16;not null;default:WAITING;index"`
	Message       string               `gorm:"type:text"`

	// Recipient is resolved from RecipientID when the invitation is built
	// from a DTO. It is never persisted.
	Recipient *User `gorm:"-"`
}

// Answered reports whether the invitation left the WAITING state.
func (i *Invitation) Answered() bool {
	return i.Status != InvitationWaiting
}

// Visit records that a user viewed a visitable resource.
type Visit struct {
	BaseModel
	VisitedType VisitableType `gorm:"size:32;not null;index:idx_visit_visited"`
	VisitedID   uint          `gorm:"not null;index:idx_visit_visited"`
	VisitorID   uint          `gorm:"not null;index"`
	VisitedAt   time.Time     `gorm:"not null;index"`
}

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Announcement{},
		&AnnouncementPicture{},
		&AnnouncementCandidate{},
		&Group{},
		&GroupMessage{},
		&Invitation{},
		&Visit{},
	}
}
