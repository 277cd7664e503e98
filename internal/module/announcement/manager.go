package announcement

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// FileRemover deletes stored picture files; *pkg.FileStore implements it.
type FileRemover interface {
	Remove(name string) error
}

// Manager implements the announcement operations.
type Manager struct {
	*crud.Manager[domain.Announcement, AnnouncementDto]
	repo  *Repository
	users *user.Manager
	files FileRemover
}

// NewManager creates an announcement Manager and hooks it into user
// deletion: a deleted user loses their announcement and candidacies.
func NewManager(db *gorm.DB, repo *Repository, users *user.Manager, files FileRemover, logger *slog.Logger) *Manager {
	m := &Manager{
		Manager: crud.NewManager[domain.Announcement, AnnouncementDto]("announcement", db, repo,
			NewMapper(users.Repository()), logger),
		repo:  repo,
		users: users,
		files: files,
	}
	m.OnDelete(m.removeChildren)
	users.OnDelete(func(ctx context.Context, u *domain.User) error {
		if err := repo.RemoveCandidacies(ctx, u.ID); err != nil {
			return err
		}
		a, err := repo.FindByCreator(ctx, u.ID)
		if domain.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return m.Delete(ctx, a.ID, false)
	})
	return m
}

// Repository returns the announcement repository.
func (m *Manager) Repository() *Repository {
	return m.repo
}

func (m *Manager) removeChildren(ctx context.Context, a *domain.Announcement) error {
	if err := m.repo.RemoveCandidates(ctx, a.ID); err != nil {
		return err
	}
	if err := m.repo.DeletePictures(ctx, a.ID); err != nil {
		return err
	}
	for _, p := range a.Pictures {
		m.removeFile(ctx, p.FileName)
	}
	return nil
}

func (m *Manager) removeFile(ctx context.Context, name string) {
	if m.files == nil {
		return
	}
	if err := m.files.Remove(name); err != nil {
		m.Logger().WarnContext(ctx, "picture removal failed", "file", name, "error", err)
	}
}

// Create publishes an announcement for creatorID. Only PROPOSAL users may
// publish, and only one announcement each.
func (m *Manager) Create(ctx context.Context, creatorID uint, req CreateRequest) (*AnnouncementDto, error) {
	if err := checkDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	dto := &AnnouncementDto{
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		RentPrice:   req.RentPrice,
		Charges:     req.Charges,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Description: req.Description,
		Status:      domain.AnnouncementStatusOpen,
		CreatorID:   creatorID,
	}
	var a *domain.Announcement
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if a, err = m.Mapper().ToEntity(ctx, dto); err != nil {
			return err
		}
		creator := a.Creator
		if creator.Type != domain.UserTypeProposal {
			return domain.NewInvalidCreator("only PROPOSAL users can publish an announcement")
		}
		if creator.Announcement != nil {
			return domain.NewInvalidCreator("user already has an announcement")
		}
		return m.repo.Create(ctx, a)
	})
	if err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewInvalidCreator("user already has an announcement")
		}
		return nil, err
	}
	m.Audit(ctx, "created", a.ID, "creator_id", creatorID)
	return m.Mapper().ToDto(a), nil
}

// Update replaces the editable fields of an announcement.
func (m *Manager) Update(ctx context.Context, id uint, req UpdateRequest) (*AnnouncementDto, error) {
	return m.mutate(ctx, id, "updated", func(a *domain.Announcement) error {
		a.Title = strings.TrimSpace(req.Title)
		a.Type = req.Type
		a.RentPrice = req.RentPrice
		a.Charges = req.Charges
		a.StartDate = req.StartDate
		a.EndDate = req.EndDate
		a.Location = toAddress(req.Location)
		a.Description = req.Description
		a.Status = req.Status
		return nil
	})
}

// Patch changes the fields present in req.
func (m *Manager) Patch(ctx context.Context, id uint, req PatchRequest) (*AnnouncementDto, error) {
	return m.mutate(ctx, id, "patched", func(a *domain.Announcement) error {
		if req.Title != nil {
			a.Title = strings.TrimSpace(*req.Title)
		}
		if req.Type != nil {
			a.Type = *req.Type
		}
		if req.RentPrice != nil {
			a.RentPrice = *req.RentPrice
		}
		if req.Charges != nil {
			a.Charges = *req.Charges
		}
		if req.StartDate != nil {
			a.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			a.EndDate = req.EndDate
		}
		if req.Location != nil {
			a.Location = toAddress(*req.Location)
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		if req.Status != nil {
			a.Status = *req.Status
		}
		return nil
	})
}

func (m *Manager) mutate(ctx context.Context, id uint, action string, apply func(a *domain.Announcement) error) (*AnnouncementDto, error) {
	var a *domain.Announcement
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if a, err = m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		if err := apply(a); err != nil {
			return err
		}
		if err := checkDates(a.StartDate, a.EndDate); err != nil {
			return err
		}
		return m.repo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	m.Audit(ctx, action, id)
	return m.Mapper().ToDto(a), nil
}

// AddPicture attaches the stored file name to the announcement.
func (m *Manager) AddPicture(ctx context.Context, id uint, name string) (*PictureDto, error) {
	p := &domain.AnnouncementPicture{AnnouncementID: id, FileName: name}
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		if _, err := m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		return m.repo.AddPicture(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	m.Audit(ctx, "picture added", id, "file", name)
	return &PictureDto{ID: p.ID, FileName: p.FileName}, nil
}

// DeletePicture detaches a picture and removes its file.
func (m *Manager) DeletePicture(ctx context.Context, id uint, name string) error {
	if err := m.repo.DeletePicture(ctx, id, name); err != nil {
		return err
	}
	m.removeFile(ctx, name)
	m.Audit(ctx, "picture deleted", id, "file", name)
	return nil
}

// Candidates returns the users accepted as candidates of the announcement.
func (m *Manager) Candidates(ctx context.Context, id uint) ([]user.UserDto, error) {
	a, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(a.Candidates))
	for _, c := range a.Candidates {
		ids = append(ids, c.UserID)
	}
	users, err := m.users.Repository().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return m.users.Dtos(users), nil
}

// AddCandidate links userID to the announcement. Used when an invitation is
// accepted; it joins the transaction bound to ctx.
func (m *Manager) AddCandidate(ctx context.Context, id, userID uint) error {
	if err := m.repo.AddCandidate(ctx, id, userID); err != nil {
		return err
	}
	m.Audit(ctx, "candidate added", id, "user_id", userID)
	return nil
}

// RemoveCandidate unlinks userID from the announcement.
func (m *Manager) RemoveCandidate(ctx context.Context, id, userID uint) error {
	if err := m.repo.RemoveCandidate(ctx, id, userID); err != nil {
		return err
	}
	m.Audit(ctx, "candidate removed", id, "user_id", userID)
	return nil
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return domain.NewValidationError("validation error", map[string]string{"end_date": "must not be before start_date"})
	}
	return nil
}
