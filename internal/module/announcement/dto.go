package announcement

import (
	"time"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// AddressDto locates an announcement.
type AddressDto struct {
	Street    string  `json:"street,omitempty" binding:"max=255"`
	ZipCode   string  `json:"zip_code" binding:"required,max=16"`
	City      string  `json:"city" binding:"required,max=100"`
	Country   string  `json:"country,omitempty" binding:"max=100"`
	Latitude  float64 `json:"latitude,omitempty" binding:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude,omitempty" binding:"gte=-180,lte=180"`
}

// PictureDto is a picture attached to an announcement.
type PictureDto struct {
	ID       uint   `json:"id"`
	FileName string `json:"file_name"`
}

// AnnouncementDto is the public representation of an announcement.
type AnnouncementDto struct {
	crud.AbstractDto
	Title         string                    `json:"title"`
	Type          domain.AnnouncementType   `json:"type"`
	RentPrice     int                       `json:"rent_price"`
	Charges       int                       `json:"charges"`
	StartDate     time.Time                 `json:"start_date"`
	EndDate       *time.Time                `json:"end_date,omitempty"`
	Location      AddressDto                `json:"location"`
	ShortLocation string                    `json:"short_location"`
	Description   string                    `json:"description,omitempty"`
	Status        domain.AnnouncementStatus `json:"status"`
	CreatorID     uint                      `json:"creator_id"`
	Pictures      []PictureDto              `json:"pictures"`
	CandidateIDs  []uint                    `json:"candidate_ids"`
}

// EntityType implements crud.EntityDto.
func (AnnouncementDto) EntityType() string { return "announcement" }

// CreateRequest is the body of POST /rest/announcements.
type CreateRequest struct {
	Title       string                  `json:"title" binding:"required,max=255"`
	Type        domain.AnnouncementType `json:"type" binding:"required,oneof=RENT SUBLEASE SHARING"`
	RentPrice   int                     `json:"rent_price" binding:"gte=0"`
	Charges     int                     `json:"charges" binding:"gte=0"`
	StartDate   time.Time               `json:"start_date" binding:"required"`
	EndDate     *time.Time              `json:"end_date"`
	Location    AddressDto              `json:"location" binding:"required"`
	Description string                  `json:"description" binding:"max=5000"`
}

// UpdateRequest is the body of PUT /rest/announcements/{id}.
type UpdateRequest struct {
	CreateRequest
	Status domain.AnnouncementStatus `json:"status" binding:"required,oneof=OPEN CLOSED FILLED"`
}

// PatchRequest is the body of PATCH /rest/announcements/{id}: absent fields
// are kept.
type PatchRequest struct {
	Title       *string                    `json:"title" binding:"omitempty,min=1,max=255"`
	Type        *domain.AnnouncementType   `json:"type" binding:"omitempty,oneof=RENT SUBLEASE SHARING"`
	RentPrice   *int                       `json:"rent_price" binding:"omitempty,gte=0"`
	Charges     *int                       `json:"charges" binding:"omitempty,gte=0"`
	StartDate   *time.Time                 `json:"start_date"`
	EndDate     *time.Time                 `json:"end_date"`
	Location    *AddressDto                `json:"location"`
	Description *string                    `json:"description" binding:"omitempty,max=5000"`
	Status      *domain.AnnouncementStatus `json:"status" binding:"omitempty,oneof=OPEN CLOSED FILLED"`
}
