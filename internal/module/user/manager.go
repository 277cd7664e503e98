package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Config tunes the user manager.
type Config struct {
	// ConfirmTokenTTL is the lifetime of registration confirmation tokens.
	ConfirmTokenTTL time.Duration
	// RequireConfirmed refuses logins of PENDING accounts.
	RequireConfirmed bool
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// ChangeHook is notified after a user was modified or deleted.
type ChangeHook func(ctx context.Context, id uint)

// Manager implements the user operations.
type Manager struct {
	*crud.Manager[domain.User, UserDto]
	repo       *Repository
	dispatcher *event.Dispatcher
	cfg        Config
	now        func() time.Time
	onChange   []ChangeHook
}

// NewManager creates a user Manager.
func NewManager(db *gorm.DB, repo *Repository, dispatcher *event.Dispatcher, logger *slog.Logger, cfg Config) *Manager {
	if cfg.ConfirmTokenTTL <= 0 {
		cfg.ConfirmTokenTTL = 48 * time.Hour
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	m := &Manager{
		Manager:    crud.NewManager[domain.User, UserDto]("user", db, repo, Mapper{}, logger),
		repo:       repo,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
	m.OnDelete(func(ctx context.Context, u *domain.User) error {
		if err := repo.DeleteTokens(ctx, u.Email); err != nil {
			return err
		}
		m.changed(ctx, u.ID)
		return nil
	})
	return m
}

// Repository returns the user repository, for modules resolving users.
func (m *Manager) Repository() *Repository {
	return m.repo
}

// OnChange registers a hook run after a user is updated, has its status
// changed or is deleted.
func (m *Manager) OnChange(hook ChangeHook) {
	m.onChange = append(m.onChange, hook)
}

// NotifyChanged runs the change hooks for a user modified outside this
// manager, such as a group membership change.
func (m *Manager) NotifyChanged(ctx context.Context, id uint) {
	m.changed(ctx, id)
}

func (m *Manager) changed(ctx context.Context, id uint) {
	for _, hook := range m.onChange {
		hook(ctx, id)
	}
}

// Dtos maps users to DTOs.
func (m *Manager) Dtos(users []domain.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for i := range users {
		out = append(out, *m.Mapper().ToDto(&users[i]))
	}
	return out
}

// Register creates a PENDING account and publishes event.UserRegistered
// carrying its confirmation token.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*UserDto, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := m.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "email already registered", nil)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.cfg.HashCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	gender := req.Gender
	if gender == "" {
		gender = domain.GenderUnknown
	}
	u, err := m.Mapper().ToEntity(ctx, &UserDto{
		Email:       email,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Gender:      gender,
		BirthDate:   req.BirthDate,
		Type:        req.Type,
		Status:      domain.UserStatusPending,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)
	token := &domain.UserToken{
		Token:     uuid.NewString(),
		Reason:    domain.TokenRegistrationConfirmation,
		Username:  email,
		ExpiresAt: m.now().Add(m.cfg.ConfirmTokenTTL),
	}

	err = pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		if err := m.repo.Create(ctx, u); err != nil {
			return err
		}
		return m.repo.CreateToken(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	m.Audit(ctx, "registered", u.ID, "type", string(u.Type))
	m.dispatcher.Publish(ctx, event.UserRegistered{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		Token:       token.Token,
		ExpiresAt:   token.ExpiresAt,
	})
	return m.Mapper().ToDto(u), nil
}

// Confirm enables the account a registration token was issued for. The
// token is consumed.
func (m *Manager) Confirm(ctx context.Context, token string) (*UserDto, error) {
	var u *domain.User
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		t, err := m.repo.FindToken(ctx, token, domain.TokenRegistrationConfirmation)
		if err != nil {
			return err
		}
		if t.Expired(m.now()) {
			return domain.NewInvalidParameter("confirmation token expired")
		}
		u, err = m.repo.FindByEmail(ctx, t.Username)
		if err != nil {
			return err
		}
		if u.Status == domain.UserStatusBanned {
			return domain.ErrForbidden
		}
		u.Status = domain.UserStatusEnabled
		if err := m.repo.Update(ctx, u); err != nil {
			return err
		}
		return m.repo.DeleteTokens(ctx, t.Username)
	})
	if err != nil {
		return nil, err
	}
	m.Audit(ctx, "confirmed", u.ID)
	return m.Mapper().ToDto(u), nil
}

// Authenticate checks credentials and records the login. Unknown emails and
// wrong passwords are reported alike.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := m.repo.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid credentials", nil)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid credentials", nil)
	}
	switch {
	case u.Status == domain.UserStatusBanned:
		return nil, domain.NewAppError(domain.CodeForbidden, "account banned", nil)
	case u.Status == domain.UserStatusPending && m.cfg.RequireConfirmed:
		return nil, domain.NewAppError(domain.CodeForbidden, "account not confirmed", nil)
	}

	now := m.now()
	if err := m.repo.Conn(ctx).Model(u).UpdateColumn("last_login", now).Error; err != nil {
		return nil, crud.MapError(err)
	}
	u.LastLogin = &now
	return u, nil
}

// Update replaces the editable fields of a user.
func (m *Manager) Update(ctx context.Context, id uint, req UpdateRequest) (*UserDto, error) {
	return m.mutate(ctx, id, "updated", func(u *domain.User) error {
		u.FirstName = strings.TrimSpace(req.FirstName)
		u.LastName = strings.TrimSpace(req.LastName)
		u.Gender = req.Gender
		u.BirthDate = req.BirthDate
		u.Type = req.Type
		u.Description = req.Description
		u.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
		return nil
	})
}

// Patch changes the fields present in req.
func (m *Manager) Patch(ctx context.Context, id uint, req PatchRequest) (*UserDto, error) {
	return m.mutate(ctx, id, "patched", func(u *domain.User) error {
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Gender != nil {
			u.Gender = *req.Gender
		}
		if req.BirthDate != nil {
			u.BirthDate = req.BirthDate
		}
		if req.Type != nil {
			u.Type = *req.Type
		}
		if req.Description != nil {
			u.Description = *req.Description
		}
		if req.PhoneNumber != nil {
			u.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
		}
		return nil
	})
}

// UpdateStatus sets the account status of a user.
func (m *Manager) UpdateStatus(ctx context.Context, id uint, status domain.UserStatus) (*UserDto, error) {
	return m.mutate(ctx, id, "status changed", func(u *domain.User) error {
		u.Status = status
		return nil
	})
}

// SetPicture stores the file name of the user's picture and returns the name
// it replaces.
func (m *Manager) SetPicture(ctx context.Context, id uint, name string) (*UserDto, string, error) {
	var previous string
	d, err := m.mutate(ctx, id, "picture changed", func(u *domain.User) error {
		previous = u.Picture
		u.Picture = name
		return nil
	})
	return d, previous, err
}

func (m *Manager) mutate(ctx context.Context, id uint, action string, apply func(u *domain.User) error) (*UserDto, error) {
	var u *domain.User
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if u, err = m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		if err := apply(u); err != nil {
			return err
		}
		if u.Type == domain.UserTypeSearch && u.Announcement != nil {
			return domain.NewInvalidParameter("a user with an announcement must keep the PROPOSAL type")
		}
		return m.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	m.Audit(ctx, action, id)
	m.changed(ctx, id)
	return m.Mapper().ToDto(u), nil
}
