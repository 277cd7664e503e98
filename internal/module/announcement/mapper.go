package announcement

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

// Mapper converts announcements to DTOs and back.
type Mapper struct {
	users UserLookup
}

// NewMapper creates a Mapper resolving creators and candidates through users.
func NewMapper(users UserLookup) Mapper {
	return Mapper{users: users}
}

// ToDto maps a.
func (Mapper) ToDto(a *domain.Announcement) *AnnouncementDto {
	if a == nil {
		return nil
	}
	d := &AnnouncementDto{
		AbstractDto: crud.NewAbstractDto(a.BaseModel),
		Title:       a.Title,
		Type:        a.Type,
		RentPrice:   a.RentPrice,
		Charges:     a.Charges,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		Location: AddressDto{
			Street:    a.Location.Street,
			ZipCode:   a.Location.ZipCode,
			City:      a.Location.City,
			Country:   a.Location.Country,
			Latitude:  a.Location.Latitude,
			Longitude: a.Location.Longitude,
		},
		ShortLocation: a.Location.Short(),
		Description:   a.Description,
		Status:        a.Status,
		CreatorID:     a.CreatorID,
		Pictures:      make([]PictureDto, 0, len(a.Pictures)),
		CandidateIDs:  make([]uint, 0, len(a.Candidates)),
	}
	for _, p := range a.Pictures {
		d.Pictures = append(d.Pictures, PictureDto{ID: p.ID, FileName: p.FileName})
	}
	for _, c := range a.Candidates {
		d.CandidateIDs = append(d.CandidateIDs, c.UserID)
	}
	return d
}

// ToEntity maps d. The creator and every candidate must exist.
func (m Mapper) ToEntity(ctx context.Context, d *AnnouncementDto) (*domain.Announcement, error) {
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
	a := &domain.Announcement{
		Creator:     creator,
		BaseModel:   d.BaseModel(),
		Title:       d.Title,
		Type:        d.Type,
		RentPrice:   d.RentPrice,
		Charges:     d.Charges,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Location:    toAddress(d.Location),
		Description: d.Description,
		Status:      d.Status,
		CreatorID:   d.CreatorID,
	}
	for _, p := range d.Pictures {
		a.Pictures = append(a.Pictures, domain.AnnouncementPicture{
			BaseModel:      domain.BaseModel{ID: p.ID},
			AnnouncementID: d.ID,
			FileName:       p.FileName,
		})
	}
	if len(d.CandidateIDs) > 0 {
		users, err := m.users.FindByIDs(ctx, d.CandidateIDs)
		if err != nil {
			return nil, err
		}
		if len(users) != len(d.CandidateIDs) {
			return nil, domain.NewInvalidParameter("unknown candidate")
		}
		for _, id := range d.CandidateIDs {
			a.Candidates = append(a.Candidates, domain.AnnouncementCandidate{AnnouncementID: d.ID, UserID: id})
		}
	}
	return a, nil
}

func toAddress(d AddressDto) domain.Address {
	return domain.Address{
		Street:    d.Street,
		ZipCode:   d.ZipCode,
		City:      d.City,
		Country:   d.Country,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
	}
}
