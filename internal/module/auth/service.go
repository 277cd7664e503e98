package auth

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Authenticator checks credentials; the user manager implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserFinder loads users by id; the user manager implements it.
type UserFinder interface {
	Entity(ctx context.Context, id uint) (*domain.User, error)
}

// Service logs users in and resolves bearer tokens to actors. Resolved
// actors are cached for a short time.
type Service struct {
	tokens *TokenManager
	auth   Authenticator
	users  UserFinder
	actors *cache.Cache
	logger *slog.Logger
}

// NewService creates an auth Service caching actors for actorTTL.
func NewService(tokens *TokenManager, auth Authenticator, users UserFinder, actorTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokens: tokens,
		auth:   auth,
		users:  users,
		actors: cache.New(actorTTL, 2*actorTTL),
		logger: logger,
	}
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	u, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		if domain.IsUnauthorized(err) {
			s.logger.WarnContext(ctx, "login failed", "reason", err.Error())
		}
		return nil, err
	}
	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to issue token", err)
	}
	s.actors.Set(cacheKey(u.ID), security.NewActor(u), cache.DefaultExpiration)
	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveActor implements middleware.ActorResolver.
func (s *Service) ResolveActor(ctx context.Context, token string) (*security.Actor, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected bearer token", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if a, ok := s.actors.Get(cacheKey(id)); ok {
		return a.(*security.Actor), nil
	}
	u, err := s.users.Entity(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	actor := security.NewActor(u)
	s.actors.Set(cacheKey(id), actor, cache.DefaultExpiration)
	return actor, nil
}

// Evict drops the cached actor of a user, so that the next request sees its
// current roles and status.
func (s *Service) Evict(_ context.Context, userID uint) {
	s.actors.Delete(cacheKey(userID))
}

func cacheKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
