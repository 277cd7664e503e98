package invitation

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Target is the subject of invitation decisions: an invitation and the owner
// of its invitable.
type Target struct {
	Invitation *domain.Invitation
	OwnerID    uint
}

// Voter decides on invitations. Both sides read an invitation; only the
// side that did not initiate it answers.
type Voter struct{}

// Supports implements security.Voter.
func (Voter) Supports(attr security.Attribute, subject any) bool {
	if _, ok := subject.(Target); !ok {
		return false
	}
	return attr == security.Read || attr == security.Answer
}

// Vote implements security.Voter.
func (Voter) Vote(_ context.Context, attr security.Attribute, subject any, actor *security.Actor) bool {
	t, ok := subject.(Target)
	if !ok || t.Invitation == nil || actor.Disabled() {
		return false
	}
	if attr == security.Read {
		return actor.ID == t.Invitation.RecipientID || actor.ID == t.OwnerID
	}
	if t.Invitation.SourceType == domain.SourceInvitable {
		return actor.ID == t.Invitation.RecipientID
	}
	return actor.ID == t.OwnerID
}
