// Package security decides whether an authenticated actor may perform an
// action on a resource.
package security

import (
	"context"
	"log/slog"
	"slices"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// Attribute names an action checked against a subject.
type Attribute string

const (
	Read            Attribute = "READ"
	Update          Attribute = "UPDATE"
	Delete          Attribute = "DELETE"
	UpdatePicture   Attribute = "UPDATE_PICTURE"
	UpdateStatus    Attribute = "UPDATE_STATUS"
	ListVisits      Attribute = "LIST_VISITS"
	ListInvitations Attribute = "LIST_INVITATIONS"
	RemoveMember    Attribute = "REMOVE_MEMBER"
	RemoveCandidate Attribute = "REMOVE_CANDIDATE"
	PostMessage     Attribute = "POST_MESSAGE"
	ListMessages    Attribute = "LIST_MESSAGES"
	Answer          Attribute = "ANSWER"
)

// Actor is the authenticated user a request runs as.
type Actor struct {
	ID      uint
	Email   string
	Status  domain.UserStatus
	Roles   []string
	GroupID *uint
}

// NewActor builds an Actor from a stored user.
func NewActor(u *domain.User) *Actor {
	var groupID *uint
	if u.GroupID != nil {
		id := *u.GroupID
		groupID = &id
	}
	return &Actor{ID: u.ID, Email: u.Email, Status: u.Status, Roles: u.RoleList(), GroupID: groupID}
}

// HasRole reports whether the actor holds role.
func (a *Actor) HasRole(role string) bool {
	return a != nil && slices.Contains(a.Roles, role)
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a.HasRole(domain.RoleAdmin)
}

// Disabled reports whether the actor's account is banned.
func (a *Actor) Disabled() bool {
	return a == nil || a.Status == domain.UserStatusBanned
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor carried by ctx, or nil for anonymous requests.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}

// Voter grants or refuses one kind of subject. Voters never fail: a lookup
// error counts as a refusal.
type Voter interface {
	Supports(attr Attribute, subject any) bool
	Vote(ctx context.Context, attr Attribute, subject any, actor *Actor) bool
}

// AccessDecisionManager grants access when any supporting voter grants it.
// Without a supporting voter access is denied.
type AccessDecisionManager struct {
	voters []Voter
	logger *slog.Logger
}

// NewAccessDecisionManager creates a decision manager over voters.
func NewAccessDecisionManager(logger *slog.Logger, voters ...Voter) *AccessDecisionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessDecisionManager{voters: voters, logger: logger}
}

// Register adds voters after construction, for modules wired late.
func (m *AccessDecisionManager) Register(voters ...Voter) {
	m.voters = append(m.voters, voters...)
}

// Decide reports whether actor may perform attr on subject.
func (m *AccessDecisionManager) Decide(ctx context.Context, actor *Actor, attr Attribute, subject any) bool {
	if actor.Disabled() {
		return false
	}
	for _, v := range m.voters {
		if v.Supports(attr, subject) && v.Vote(ctx, attr, subject, actor) {
			return true
		}
	}
	return false
}

// DenyUnlessGranted checks attr on subject for the actor carried by ctx.
// It returns domain.ErrUnauthorized without an actor and domain.ErrForbidden
// when access is refused.
func (m *AccessDecisionManager) DenyUnlessGranted(ctx context.Context, attr Attribute, subject any) error {
	actor := ActorFrom(ctx)
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !m.Decide(ctx, actor, attr, subject) {
		m.logger.WarnContext(ctx, "access denied", "actor", actor.ID, "attribute", string(attr))
		return domain.ErrForbidden
	}
	return nil
}

// RequireActor returns the actor carried by ctx or domain.ErrUnauthorized.
func RequireActor(ctx context.Context) (*Actor, error) {
	actor := ActorFrom(ctx)
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if actor.Disabled() {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}
