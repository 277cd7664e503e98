package announcement

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Voter grants the creator of an announcement every management action on it.
type Voter struct{}

// Supports implements security.Voter.
func (Voter) Supports(attr security.Attribute, subject any) bool {
	if _, ok := subject.(*domain.Announcement); !ok {
		return false
	}
	switch attr {
	case security.Update, security.Delete, security.UpdatePicture, security.ListVisits,
		security.ListInvitations, security.RemoveCandidate:
		return true
	}
	return false
}

// Vote implements security.Voter.
func (Voter) Vote(_ context.Context, _ security.Attribute, subject any, actor *security.Actor) bool {
	a, ok := subject.(*domain.Announcement)
	if !ok || a == nil || actor.Disabled() {
		return false
	}
	return a.CreatorID == actor.ID
}
