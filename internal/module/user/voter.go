package user

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Voter decides on users: a user manages their own account, admins delete
// accounts and change their status.
type Voter struct{}

// Supports implements security.Voter.
func (Voter) Supports(attr security.Attribute, subject any) bool {
	if _, ok := subject.(*domain.User); !ok {
		return false
	}
	switch attr {
	case security.Update, security.UpdatePicture, security.ListVisits, security.ListInvitations,
		security.Delete, security.UpdateStatus:
		return true
	}
	return false
}

// Vote implements security.Voter.
func (Voter) Vote(_ context.Context, attr security.Attribute, subject any, actor *security.Actor) bool {
	u, ok := subject.(*domain.User)
	if !ok || u == nil || actor.Disabled() {
		return false
	}
	switch attr {
	case security.Delete, security.UpdateStatus:
		return actor.IsAdmin()
	default:
		return actor.ID == u.ID
	}
}
