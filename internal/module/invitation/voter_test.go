package invitation

import (
	"context"
	"testing"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

func TestVoter_VoteDeniesUnusableInput(t *testing.T) {
	ctx := context.Background()
	inv := &domain.Invitation{RecipientID: 2, SourceType: domain.SourceInvitable}
	target := Target{Invitation: inv, OwnerID: 1}

	tests := []struct {
		name    string
		attr    security.Attribute
		subject any
		actor   *security.Actor
	}{
		{"nil actor reads", security.Read, target, nil},
		{"nil actor answers", security.Answer, target, nil},
		{"banned recipient answers", security.Answer, target, &security.Actor{ID: 2, Status: domain.UserStatusBanned}},
		{"nil invitation", security.Read, Target{OwnerID: 1}, &security.Actor{ID: 1}},
		{"foreign subject", security.Read, inv, &security.Actor{ID: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (Voter{}).Vote(ctx, tt.attr, tt.subject, tt.actor) {
				t.Errorf("Vote(%s) = true, want false", tt.attr)
			}
		})
	}
	if !(Voter{}).Vote(ctx, security.Answer, target, &security.Actor{ID: 2}) {
		t.Error("recipient must answer an INVITABLE invitation")
	}
}
