package domain

import (
	"strings"
	"time"
)

// Address locates an announcement.
type Address struct {
	Street    string `gorm:"size:255"`
	ZipCode   string `gorm:"size:16;index"`
	City      string `gorm:"size:100;index"`
	Country   string `gorm:"size:100"`
	Latitude  float64
	Longitude float64
}

// Short returns "zipCode city", the form displayed in listings.
func (a Address) Short() string {
	return strings.TrimSpace(strings.TrimSpace(a.ZipCode) + " " + strings.TrimSpace(a.City))
}

// Announcement is a housing offer published by a PROPOSAL user.
type Announcement struct {
	BaseModel
	Title       string             `gorm:"size:255;not null"`
	Type        AnnouncementType   `gorm:"size:16;not null;index"`
	RentPrice   int                `gorm:"not null;index"`
	Charges     int                `gorm:"not null;default:0"`
	StartDate   time.Time          `gorm:"not null"`
	EndDate     *time.Time
	Location    Address            `gorm:"embedded;embeddedPrefix:location_"`
	Description string             `gorm:"type:text"`
	Status      AnnouncementStatus `gorm:"size:16;not null;default:OPEN;index"`
	CreatorID   uint               `gorm:"uniqueIndex;not null"`

	Pictures   []AnnouncementPicture   `gorm:"foreignKey:AnnouncementID"`
	Candidates []AnnouncementCandidate `gorm:"foreignKey:AnnouncementID"`

	// Creator is resolved from CreatorID when the announcement is built from
	// a DTO. It is never persisted.
	Creator *User `gorm:"-"`
}

// HasCandidate reports whether userID is a candidate of the announcement.
func (a *Announcement) HasCandidate(userID uint) bool {
	for _, c := range a.Candidates {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// AnnouncementPicture is a picture file attached to an announcement.
type AnnouncementPicture struct {
	BaseModel
	AnnouncementID uint   `gorm:"index;not null"`
	FileName       string `gorm:"size:255;not null"`
}

// AnnouncementCandidate links a user accepted as candidate to an announcement.
type AnnouncementCandidate struct {
	AnnouncementID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID         uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt      time.Time
}
