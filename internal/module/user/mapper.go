package user

import (
	"context"
	"strings"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
)

// Mapper converts users to DTOs and back.
type Mapper struct{}

// ToDto maps u; the announcement id comes from the preloaded association.
func (Mapper) ToDto(u *domain.User) *UserDto {
	if u == nil {
		return nil
	}
	d := &UserDto{
		AbstractDto: crud.NewAbstractDto(u.BaseModel),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Gender:      u.Gender,
		BirthDate:   u.BirthDate,
		Type:        u.Type,
		Status:      u.Status,
		Roles:       u.RoleList(),
		Description: u.Description,
		PhoneNumber: u.PhoneNumber,
		Picture:     u.Picture,
		LastLogin:   u.LastLogin,
		GroupID:     u.GroupID,
	}
	if u.Announcement != nil {
		id := u.Announcement.ID
		d.AnnouncementID = &id
	}
	return d
}

// ToEntity maps d. Roles other than the implicit USER role are kept.
func (Mapper) ToEntity(_ context.Context, d *UserDto) (*domain.User, error) {
	if d == nil {
		return nil, nil
	}
	u := &domain.User{
		BaseModel:   d.BaseModel(),
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Gender:      d.Gender,
		BirthDate:   d.BirthDate,
		Type:        d.Type,
		Status:      d.Status,
		Description: d.Description,
		PhoneNumber: d.PhoneNumber,
		Picture:     d.Picture,
		LastLogin:   d.LastLogin,
		GroupID:     d.GroupID,
	}
	var extra []string
	for _, r := range d.Roles {
		if r != "" && r != domain.RoleUser {
			extra = append(extra, r)
		}
	}
	u.Roles = strings.Join(extra, ",")
	if d.AnnouncementID != nil {
		u.Announcement = &domain.Announcement{BaseModel: domain.BaseModel{ID: *d.AnnouncementID}, CreatorID: d.ID}
	}
	return u, nil
}
