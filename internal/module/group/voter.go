package group

import (
	"context"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

// Membership is the subject of REMOVE_MEMBER: a member of a group.
type Membership struct {
	Group  *domain.Group
	UserID uint
}

// Voter decides on groups. The creator manages the group; members talk in it
// and may leave it.
type Voter struct{}

// Supports implements security.Voter.
func (Voter) Supports(attr security.Attribute, subject any) bool {
	switch subject.(type) {
	case *domain.Group:
		switch attr {
		case security.Update, security.Delete, security.UpdatePicture, security.ListVisits,
			security.ListInvitations, security.RemoveMember, security.PostMessage, security.ListMessages:
			return true
		}
	case Membership:
		return attr == security.RemoveMember
	}
	return false
}

// Vote implements security.Voter.
// A nil or banned actor and a foreign subject are denied.
func (Voter) Vote(_ context.Context, attr security.Attribute, subject any, actor *security.Actor) bool {
	if actor.Disabled() {
		return false
	}
	if m, ok := subject.(Membership); ok {
		if m.Group == nil {
			return false
		}
		return m.Group.CreatorID == actor.ID || (m.UserID == actor.ID && m.Group.HasMember(actor.ID))
	}

	g, ok := subject.(*domain.Group)
	if !ok || g == nil {
		return false
	}
	switch attr {
	case security.RemoveMember:
		return g.CreatorID == actor.ID || g.HasMember(actor.ID)
	case security.PostMessage, security.ListMessages:
		return g.HasMember(actor.ID)
	default:
		return g.CreatorID == actor.ID
	}
}
