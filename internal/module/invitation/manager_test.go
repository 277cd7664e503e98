package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/module/announcement"
	"github.com/simp-lee/colocmatching/internal/module/group"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
	"github.com/simp-lee/colocmatching/internal/testdb"
)

type answers map[string]int

func (a answers) InvitationAnswered(invitableType, status string) {
	a[invitableType+":"+status]++
}

type fixture struct {
	db            *gorm.DB
	users         *user.Manager
	announcements *announcement.Manager
	groups        *group.Manager
	invitations   *Manager
	events        *event.Dispatcher
	published     []event.Event
	answered      answers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	d := event.NewDispatcher(nil)
	f := &fixture{db: db, events: d, answered: answers{}}
	d.SubscribeAll(func(_ context.Context, e event.Event) error {
		f.published = append(f.published, e)
		return nil
	})
	f.users = user.NewManager(db, user.NewRepository(db), d, nil, user.Config{HashCost: bcrypt.MinCost})
	f.announcements = announcement.NewManager(db, announcement.NewRepository(db), f.users, nil, nil)
	f.groups = group.NewManager(db, group.NewRepository(db), f.users, nil, nil)
	f.invitations = NewManager(db, NewRepository(db), f.users, f.announcements, f.groups, d, f.answered, nil)
	return f
}

func (f *fixture) user(t *testing.T, email string, typ domain.UserType) *user.UserDto {
	t.Helper()
	u, err := f.users.Register(context.Background(), user.RegisterRequest{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User", Type: typ,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) announcement(t *testing.T, creator uint) *announcement.AnnouncementDto {
	t.Helper()
	a, err := f.announcements.Create(context.Background(), creator, announcement.CreateRequest{
		Title:     "Room in Lyon",
		Type:      domain.AnnouncementTypeRent,
		RentPrice: 500,
		StartDate: time.Now().AddDate(0, 1, 0),
		Location:  announcement.AddressDto{ZipCode: "69001", City: "Lyon"},
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) group(t *testing.T, creator uint) *group.GroupDto {
	t.Helper()
	g, err := f.groups.Create(context.Background(), creator, group.CreateRequest{Name: "Flatmates", Budget: 900})
	require.NoError(t, err)
	return g
}

func (f *fixture) eventsNamed(name string) []event.Event {
	var out []event.Event
	for _, e := range f.published {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

func TestCreate_OwnerInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)

	inv, err := f.invitations.Create(ctx, owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: bob.ID, Message: " welcome "})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceInvitable, inv.SourceType)
	assert.Equal(t, domain.InvitationWaiting, inv.Status)
	assert.Equal(t, bob.ID, inv.RecipientID)
	assert.Equal(t, "welcome", inv.Message)

	created := f.eventsNamed(event.NameInvitationCreated)
	require.Len(t, created, 1)
	ev := created[0].(event.InvitationCreated)
	assert.Equal(t, owner.ID, ev.Sender.ID)
	assert.Equal(t, "bob@coloc.test", ev.Notify.Email)

	_, err = f.invitations.Create(ctx, owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: bob.ID})
	assert.True(t, domain.IsInvalidParameter(err), "duplicate waiting invitation: %v", err)
}

func TestCreate_SearcherApplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	g := f.group(t, ann.ID)

	inv, err := f.invitations.Create(ctx, bob.ID, domain.InvitableGroup, g.ID, CreateRequest{RecipientID: 999})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSearcher, inv.SourceType)
	assert.Equal(t, bob.ID, inv.RecipientID)

	ev := f.eventsNamed(event.NameInvitationCreated)[0].(event.InvitationCreated)
	assert.Equal(t, bob.ID, ev.Sender.ID)
	assert.Equal(t, ann.ID, ev.Notify.ID)
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	other := f.user(t, "other@coloc.test", domain.UserTypeProposal)
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	cid := f.user(t, "cid@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)
	g := f.group(t, ann.ID)
	_, err := f.groups.AddMember(ctx, g.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.announcements.AddCandidate(ctx, a.ID, cid.ID))

	tests := []struct {
		name  string
		actor uint
		typ   domain.InvitableType
		id    uint
		req   CreateRequest
		check func(error) bool
	}{
		{"missing invitable", bob.ID, domain.InvitableAnnouncement, 999, CreateRequest{}, domain.IsNotFound},
		{"owner without recipient", owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{}, domain.IsValidation},
		{"unknown recipient", owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: 999}, domain.IsInvalidRecipient},
		{"owner invites self", owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: owner.ID}, domain.IsInvalidParameter},
		{"proposal recipient", owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: other.ID}, domain.IsInvalidParameter},
		{"candidate recipient", owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: cid.ID}, domain.IsInvalidParameter},
		{"candidate applies", cid.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{}, domain.IsInvalidParameter},
		{"proposal applies", other.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{}, domain.IsInvalidParameter},
		{"member invited to group", ann.ID, domain.InvitableGroup, g.ID, CreateRequest{RecipientID: bob.ID}, domain.IsInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invitations.Create(ctx, tt.actor, tt.typ, tt.id, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	_, err = f.announcements.Patch(ctx, a.ID, announcement.PatchRequest{Status: ptr(domain.AnnouncementStatusClosed)})
	require.NoError(t, err)
	_, err = f.invitations.Create(ctx, bob.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{})
	assert.True(t, domain.IsUnavailableInvitable(err), "closed announcement: %v", err)
}

func TestAnswer_AcceptAnnouncement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	owner2 := f.user(t, "owner2@coloc.test", domain.UserTypeProposal)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)
	a2 := f.announcement(t, owner2.ID)

	applied, err := f.invitations.Create(ctx, bob.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{})
	require.NoError(t, err)
	other, err := f.invitations.Create(ctx, owner2.ID, domain.InvitableAnnouncement, a2.ID, CreateRequest{RecipientID: bob.ID})
	require.NoError(t, err)

	answered, err := f.invitations.Answer(ctx, applied.ID, owner.ID, domain.InvitationAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, answered.Status)

	candidates, err := f.announcements.Candidates(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, bob.ID, candidates[0].ID)

	purged, err := f.invitations.Read(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRefused, purged.Status)

	_, err = f.invitations.Answer(ctx, applied.ID, owner.ID, domain.InvitationRefused)
	assert.True(t, domain.IsInvalidParameter(err), "answered twice: %v", err)

	assert.Equal(t, 1, f.answered["announcement:ACCEPTED"])
	ev := f.eventsNamed(event.NameInvitationAnswered)[0].(event.InvitationAnswered)
	assert.Equal(t, owner.ID, ev.Answerer.ID)
	assert.Equal(t, bob.ID, ev.Notify.ID)
}

func TestAnswer_RefuseAndGroupAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	g := f.group(t, ann.ID)

	inv, err := f.invitations.Create(ctx, ann.ID, domain.InvitableGroup, g.ID, CreateRequest{RecipientID: bob.ID})
	require.NoError(t, err)
	refused, err := f.invitations.Answer(ctx, inv.ID, bob.ID, domain.InvitationRefused)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRefused, refused.Status)
	assert.Equal(t, 1, f.answered["group:REFUSED"])

	inv, err = f.invitations.Create(ctx, ann.ID, domain.InvitableGroup, g.ID, CreateRequest{RecipientID: bob.ID})
	require.NoError(t, err)
	_, err = f.invitations.Answer(ctx, inv.ID, bob.ID, domain.InvitationAccepted)
	require.NoError(t, err)

	members, err := f.groups.Members(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	ev := f.eventsNamed(event.NameInvitationAnswered)[1].(event.InvitationAnswered)
	assert.Equal(t, ann.ID, ev.Notify.ID)
}

func TestAnswer_UnavailableInvitable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	g := f.group(t, ann.ID)

	inv, err := f.invitations.Create(ctx, bob.ID, domain.InvitableGroup, g.ID, CreateRequest{})
	require.NoError(t, err)
	_, err = f.groups.Patch(ctx, g.ID, group.PatchRequest{Status: ptr(domain.GroupStatusClosed)})
	require.NoError(t, err)

	_, err = f.invitations.Answer(ctx, inv.ID, ann.ID, domain.InvitationAccepted)
	assert.True(t, domain.IsUnavailableInvitable(err), "closed group: %v", err)
}

func TestAnswer_InvitesGroupMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	cid := f.user(t, "cid@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)
	g := f.group(t, ann.ID)
	for _, id := range []uint{bob.ID, cid.ID} {
		_, err := f.groups.AddMember(ctx, g.ID, id)
		require.NoError(t, err)
	}
	_, err := f.invitations.Create(ctx, owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: cid.ID})
	require.NoError(t, err)

	inv, err := f.invitations.Create(ctx, owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: ann.ID})
	require.NoError(t, err)
	_, err = f.invitations.Answer(ctx, inv.ID, ann.ID, domain.InvitationAccepted)
	require.NoError(t, err)

	page, err := f.invitations.ListByInvitable(ctx, domain.InvitableAnnouncement, a.ID, pkg.Pageable{})
	require.NoError(t, err)
	byRecipient := map[uint][]InvitationDto{}
	for _, i := range page.Content {
		byRecipient[i.RecipientID] = append(byRecipient[i.RecipientID], i)
	}
	require.Len(t, byRecipient[bob.ID], 1)
	assert.Equal(t, domain.SourceInvitable, byRecipient[bob.ID][0].SourceType)
	assert.Equal(t, domain.InvitationWaiting, byRecipient[bob.ID][0].Status)
	assert.Len(t, byRecipient[cid.ID], 1, "cid already had a waiting invitation")
	assert.Len(t, byRecipient[ann.ID], 1)
}

func TestListByRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	g := f.group(t, ann.ID)
	_, err := f.invitations.Create(ctx, bob.ID, domain.InvitableGroup, g.ID, CreateRequest{})
	require.NoError(t, err)

	page, err := f.invitations.ListByRecipient(ctx, bob.ID, pkg.Pageable{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.invitations.ListByRecipient(ctx, ann.ID, pkg.Pageable{})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}

func TestDelete_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)
	g := f.group(t, ann.ID)

	_, err := f.invitations.Create(ctx, bob.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{})
	require.NoError(t, err)
	_, err = f.invitations.Create(ctx, bob.ID, domain.InvitableGroup, g.ID, CreateRequest{})
	require.NoError(t, err)
	_, err = f.invitations.Create(ctx, owner.ID, domain.InvitableAnnouncement, a.ID, CreateRequest{RecipientID: ann.ID})
	require.NoError(t, err)

	require.NoError(t, f.announcements.Delete(ctx, a.ID, true))
	n, err := f.invitations.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, f.users.Delete(ctx, bob.ID, true))
	n, err = f.invitations.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVoter(t *testing.T) {
	invitable := &domain.Invitation{RecipientID: 2, SourceType: domain.SourceInvitable}
	searcher := &domain.Invitation{RecipientID: 2, SourceType: domain.SourceSearcher}
	tests := []struct {
		name    string
		attr    string
		subject Target
		actor   uint
		want    bool
	}{
		{"recipient reads", "READ", Target{invitable, 1}, 2, true},
		{"owner reads", "READ", Target{invitable, 1}, 1, true},
		{"stranger reads", "READ", Target{invitable, 1}, 3, false},
		{"recipient answers invitation", "ANSWER", Target{invitable, 1}, 2, true},
		{"owner answers own invitation", "ANSWER", Target{invitable, 1}, 1, false},
		{"owner answers application", "ANSWER", Target{searcher, 1}, 1, true},
		{"applicant answers own application", "ANSWER", Target{searcher, 1}, 2, false},
		{"missing invitation", "READ", Target{nil, 1}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Voter{}
			attr := security.Attribute(tt.attr)
			require.True(t, v.Supports(attr, tt.subject))
			got := v.Vote(context.Background(), attr, tt.subject, &security.Actor{ID: tt.actor, Status: domain.UserStatusEnabled})
			assert.Equal(t, tt.want, got)
		})
	}
	assert.False(t, Voter{}.Supports(security.Update, Target{}))
	assert.False(t, Voter{}.Supports(security.Read, invitable))
}

func ptr[T any](v T) *T { return &v }

func TestMapper_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	inv := &domain.Invitation{
		BaseModel:     domain.BaseModel{ID: 7, CreatedAt: now, UpdatedAt: now.Add(time.Minute)},
		InvitableType: domain.InvitableGroup,
		InvitableID:   3,
		RecipientID:   bob.ID,
		SourceType:    domain.SourceSearcher,
		Status:        domain.InvitationRefused,
		Message:       "hello",
	}

	mapper := NewMapper(f.users.Repository())
	d := mapper.ToDto(inv)
	require.NotNil(t, d)
	assert.Equal(t, uint(7), d.ID)
	assert.Equal(t, now.Add(time.Minute), d.LastUpdate)

	back, err := mapper.ToEntity(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, back.Recipient)
	assert.Equal(t, bob.ID, back.Recipient.ID)
	back.Recipient = nil
	assert.Equal(t, inv, back)

	d.RecipientID = 999
	_, err = mapper.ToEntity(ctx, d)
	assert.True(t, domain.IsInvalidRecipient(err))

	assert.Nil(t, mapper.ToDto(nil))
	e, err := mapper.ToEntity(ctx, nil)
	assert.NoError(t, err)
	assert.Nil(t, e)
}
