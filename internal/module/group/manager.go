package group

import (
	"context"
	"log/slog"
	"strings"

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

// Manager implements the group operations.
type Manager struct {
	*crud.Manager[domain.Group, GroupDto]
	repo  *Repository
	users *user.Manager
	files FileRemover
}

// NewManager creates a group Manager. Deleting a user deletes the group they
// created.
func NewManager(db *gorm.DB, repo *Repository, users *user.Manager, files FileRemover, logger *slog.Logger) *Manager {
	m := &Manager{
		Manager: crud.NewManager[domain.Group, GroupDto]("group", db, repo, NewMapper(users.Repository()), logger),
		repo:    repo,
		users:   users,
		files:   files,
	}
	m.OnDelete(m.removeChildren)
	users.OnDelete(func(ctx context.Context, u *domain.User) error {
		g, err := repo.FindByCreator(ctx, u.ID)
		if domain.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return m.Delete(ctx, g.ID, false)
	})
	return m
}

// Repository returns the group repository.
func (m *Manager) Repository() *Repository {
	return m.repo
}

func (m *Manager) removeChildren(ctx context.Context, g *domain.Group) error {
	if err := m.users.Repository().ClearGroup(ctx, g.ID); err != nil {
		return err
	}
	if err := m.repo.DeleteMessages(ctx, g.ID); err != nil {
		return err
	}
	for _, member := range g.Members {
		m.users.NotifyChanged(ctx, member.ID)
	}
	if g.Picture != "" {
		m.removeFile(ctx, g.Picture)
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

// Create makes a group for creatorID, who becomes its first member. A user
// creates at most one group and must not already belong to one.
func (m *Manager) Create(ctx context.Context, creatorID uint, req CreateRequest) (*GroupDto, error) {
	dto := &GroupDto{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Budget:      req.Budget,
		Status:      domain.GroupStatusOpen,
		CreatorID:   creatorID,
	}
	var g *domain.Group
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if g, err = m.Mapper().ToEntity(ctx, dto); err != nil {
			return err
		}
		if g.Creator.GroupID != nil {
			return domain.NewInvalidCreator("user already belongs to a group")
		}
		if _, err := m.repo.FindByCreator(ctx, creatorID); err == nil {
			return domain.NewInvalidCreator("user already created a group")
		} else if !domain.IsNotFound(err) {
			return err
		}
		if err := m.repo.Create(ctx, g); err != nil {
			return err
		}
		if err := m.users.Repository().SetGroup(ctx, creatorID, &g.ID); err != nil {
			return err
		}
		g, err = m.repo.FindByID(ctx, g.ID)
		return err
	})
	if err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewInvalidCreator("user already created a group")
		}
		return nil, err
	}
	m.users.NotifyChanged(ctx, creatorID)
	m.Audit(ctx, "created", g.ID, "creator_id", creatorID)
	return m.Mapper().ToDto(g), nil
}

// Update replaces the editable fields of a group.
func (m *Manager) Update(ctx context.Context, id uint, req UpdateRequest) (*GroupDto, error) {
	return m.mutate(ctx, id, "updated", func(g *domain.Group) {
		g.Name = strings.TrimSpace(req.Name)
		g.Description = req.Description
		g.Budget = req.Budget
		g.Status = req.Status
	})
}

// Patch changes the fields present in req.
func (m *Manager) Patch(ctx context.Context, id uint, req PatchRequest) (*GroupDto, error) {
	return m.mutate(ctx, id, "patched", func(g *domain.Group) {
		if req.Name != nil {
			g.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			g.Description = *req.Description
		}
		if req.Budget != nil {
			g.Budget = *req.Budget
		}
		if req.Status != nil {
			g.Status = *req.Status
		}
	})
}

// SetPicture stores the file name of the group picture and returns the name
// it replaces.
func (m *Manager) SetPicture(ctx context.Context, id uint, name string) (*GroupDto, string, error) {
	var previous string
	d, err := m.mutate(ctx, id, "picture changed", func(g *domain.Group) {
		previous = g.Picture
		g.Picture = name
	})
	return d, previous, err
}

func (m *Manager) mutate(ctx context.Context, id uint, action string, apply func(g *domain.Group)) (*GroupDto, error) {
	var g *domain.Group
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if g, err = m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		apply(g)
		return m.repo.Update(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	m.Audit(ctx, action, id)
	return m.Mapper().ToDto(g), nil
}

// Members returns the members of a group.
func (m *Manager) Members(ctx context.Context, id uint) ([]user.UserDto, error) {
	if _, err := m.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	users, err := m.users.Repository().FindByGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.users.Dtos(users), nil
}

// AddMember puts userID in the group. The group must be open and the user
// must not belong to another group. It joins the transaction bound to ctx.
func (m *Manager) AddMember(ctx context.Context, id, userID uint) (*GroupDto, error) {
	var g *domain.Group
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if g, err = m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		if g.Status != domain.GroupStatusOpen {
			return domain.NewInvalidParameter("group is closed")
		}
		u, err := m.users.Repository().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.GroupID != nil {
			return domain.NewInvalidParameter("user already belongs to a group")
		}
		if err := m.users.Repository().SetGroup(ctx, userID, &id); err != nil {
			return err
		}
		g, err = m.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.users.NotifyChanged(ctx, userID)
	m.Audit(ctx, "member added", id, "user_id", userID)
	return m.Mapper().ToDto(g), nil
}

// RemoveMember takes userID out of the group. The creator cannot be removed.
func (m *Manager) RemoveMember(ctx context.Context, id, userID uint) error {
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		g, err := m.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if g.CreatorID == userID {
			return domain.NewInvalidParameter("the creator cannot leave the group")
		}
		if !g.HasMember(userID) {
			return domain.ErrNotFound
		}
		return m.users.Repository().SetGroup(ctx, userID, nil)
	})
	if err != nil {
		return err
	}
	m.users.NotifyChanged(ctx, userID)
	m.Audit(ctx, "member removed", id, "user_id", userID)
	return nil
}

// Messages returns one page of the group conversation.
func (m *Manager) Messages(ctx context.Context, id uint, p pkg.Pageable) (*pkg.Page[MessageDto], error) {
	if err := p.Validate(MessageSortFields); err != nil {
		return nil, err
	}
	if _, err := m.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	rows, total, err := m.repo.FindMessages(ctx, id, p)
	if err != nil {
		return nil, err
	}
	dtos := make([]MessageDto, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, messageDto(&rows[i]))
	}
	return pkg.NewPage(p, dtos, total), nil
}

// PostMessage adds a message written by authorID to the conversation.
func (m *Manager) PostMessage(ctx context.Context, id, authorID uint, content string) (*MessageDto, error) {
	msg := &domain.GroupMessage{GroupID: id, AuthorID: authorID, Content: strings.TrimSpace(content)}
	if msg.Content == "" {
		return nil, domain.NewValidationError("validation error", map[string]string{"content": "must not be blank"})
	}
	if _, err := m.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := m.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	m.Audit(ctx, "message posted", id, "author_id", authorID)
	d := messageDto(msg)
	return &d, nil
}
