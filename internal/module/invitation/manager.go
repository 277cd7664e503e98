package invitation

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/module/announcement"
	"github.com/simp-lee/colocmatching/internal/module/group"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Recorder counts answered invitations; *metrics.Metrics implements it.
type Recorder interface {
	InvitationAnswered(invitableType, status string)
}

// Invitable is the announcement or group an invitation is about, reduced to
// what the invitation rules need.
type Invitable struct {
	Type    domain.InvitableType
	ID      uint
	OwnerID uint
	Open    bool
	// Included lists the candidates of an announcement or the members of a group.
	Included []uint
}

// Includes reports whether userID is already a candidate or member.
func (i *Invitable) Includes(userID uint) bool {
	return slices.Contains(i.Included, userID)
}

// Manager implements the invitation operations.
type Manager struct {
	*crud.Manager[domain.Invitation, InvitationDto]
	repo          *Repository
	users         *user.Manager
	announcements *announcement.Manager
	groups        *group.Manager
	dispatcher    *event.Dispatcher
	recorder      Recorder
}

// NewManager creates an invitation Manager. Invitations are deleted with
// their invitable and with their recipient.
func NewManager(db *gorm.DB, repo *Repository, users *user.Manager, announcements *announcement.Manager,
	groups *group.Manager, dispatcher *event.Dispatcher, recorder Recorder, logger *slog.Logger) *Manager {
	m := &Manager{
		Manager:       crud.NewManager[domain.Invitation, InvitationDto]("invitation", db, repo, NewMapper(users.Repository()), logger),
		repo:          repo,
		users:         users,
		announcements: announcements,
		groups:        groups,
		dispatcher:    dispatcher,
		recorder:      recorder,
	}
	announcements.OnDelete(func(ctx context.Context, a *domain.Announcement) error {
		return repo.DeleteByInvitable(ctx, domain.InvitableAnnouncement, a.ID)
	})
	groups.OnDelete(func(ctx context.Context, g *domain.Group) error {
		return repo.DeleteByInvitable(ctx, domain.InvitableGroup, g.ID)
	})
	users.OnDelete(func(ctx context.Context, u *domain.User) error {
		return repo.DeleteByRecipient(ctx, u.ID)
	})
	return m
}

// Invitable loads the invitable of type typ with id.
func (m *Manager) Invitable(ctx context.Context, typ domain.InvitableType, id uint) (*Invitable, error) {
	switch typ {
	case domain.InvitableAnnouncement:
		a, err := m.announcements.Repository().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		inv := &Invitable{Type: typ, ID: a.ID, OwnerID: a.CreatorID, Open: a.Status == domain.AnnouncementStatusOpen}
		for _, c := range a.Candidates {
			inv.Included = append(inv.Included, c.UserID)
		}
		return inv, nil
	case domain.InvitableGroup:
		g, err := m.groups.Repository().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		inv := &Invitable{Type: typ, ID: g.ID, OwnerID: g.CreatorID, Open: g.Status == domain.GroupStatusOpen}
		for _, u := range g.Members {
			inv.Included = append(inv.Included, u.ID)
		}
		return inv, nil
	default:
		return nil, domain.NewInvalidParameter("unknown invitable type")
	}
}

// Create records an invitation about an invitable. When the actor owns the
// invitable it invites req.RecipientID; otherwise the actor applies.
func (m *Manager) Create(ctx context.Context, actorID uint, typ domain.InvitableType, invitableID uint, req CreateRequest) (*InvitationDto, error) {
	var (
		inv        *domain.Invitation
		owner, rcp *domain.User
	)
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		target, err := m.Invitable(ctx, typ, invitableID)
		if err != nil {
			return err
		}
		if !target.Open {
			return domain.NewUnavailableInvitable("the " + string(typ) + " does not accept invitations")
		}

		source := domain.SourceSearcher
		recipientID := actorID
		if actorID == target.OwnerID {
			source = domain.SourceInvitable
			recipientID = req.RecipientID
			if recipientID == 0 {
				return domain.NewValidationError("validation error", map[string]string{"recipient_id": "required"})
			}
		}

		inv, err = m.Mapper().ToEntity(ctx, &InvitationDto{
			InvitableType: typ,
			InvitableID:   invitableID,
			RecipientID:   recipientID,
			SourceType:    source,
			Status:        domain.InvitationWaiting,
			Message:       strings.TrimSpace(req.Message),
		})
		if err != nil {
			return err
		}
		rcp = inv.Recipient
		if err := checkRecipient(target, rcp, source); err != nil {
			return err
		}

		waiting, err := m.repo.HasWaiting(ctx, typ, invitableID, recipientID)
		if err != nil {
			return err
		}
		if waiting {
			return domain.NewInvalidParameter("an invitation is already waiting for an answer")
		}

		if owner, err = m.users.Repository().FindByID(ctx, target.OwnerID); err != nil {
			return err
		}
		return m.repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	m.Audit(ctx, "created", inv.ID, "invitable_type", string(typ), "invitable_id", invitableID, "source", string(inv.SourceType))
	sender, notify := party(owner), party(rcp)
	if inv.SourceType == domain.SourceSearcher {
		sender, notify = notify, sender
	}
	m.dispatcher.Publish(ctx, event.InvitationCreated{
		InvitationID:  inv.ID,
		InvitableType: typ,
		InvitableID:   invitableID,
		SourceType:    inv.SourceType,
		Message:       inv.Message,
		Sender:        sender,
		Notify:        notify,
	})
	return m.Mapper().ToDto(inv), nil
}

// checkRecipient applies the invitation rules to the searching user of an
// invitation: the recipient when the owner invites, the invitee when a user
// applies.
func checkRecipient(target *Invitable, u *domain.User, source domain.InvitationSourceType) error {
	reject := domain.NewInvalidRecipient
	if source == domain.SourceSearcher {
		reject = domain.NewInvalidInvitee
	}
	switch {
	case u.ID == target.OwnerID:
		return reject("the owner cannot be invited")
	case u.Type != domain.UserTypeSearch:
		return reject("only SEARCH users can be invited")
	case target.Includes(u.ID):
		return reject("user already joined the " + string(target.Type))
	case target.Type == domain.InvitableGroup && u.GroupID != nil:
		return reject("user already belongs to a group")
	}
	return nil
}

// Answer accepts or refuses a WAITING invitation. Accepting makes the
// recipient a candidate or member, refuses the recipient's other waiting
// invitations of the same type and, for an announcement, invites the other
// members of the recipient's group.
func (m *Manager) Answer(ctx context.Context, id, answererID uint, status domain.InvitationStatus) (*InvitationDto, error) {
	if status != domain.InvitationAccepted && status != domain.InvitationRefused {
		return nil, domain.NewInvalidParameter("an invitation is either accepted or refused")
	}
	var (
		inv              *domain.Invitation
		owner, rcp, ansr *domain.User
		cascaded         []invited
	)
	err := pkg.WithTxContext(ctx, m.DB(), func(ctx context.Context) error {
		var err error
		if inv, err = m.repo.FindByID(ctx, id); err != nil {
			return err
		}
		if inv.Answered() {
			return domain.NewInvalidParameter("invitation already answered")
		}
		target, err := m.Invitable(ctx, inv.InvitableType, inv.InvitableID)
		if err != nil {
			return err
		}
		if !target.Open {
			return domain.NewUnavailableInvitable("the " + string(inv.InvitableType) + " is no longer available")
		}
		if rcp, err = m.users.Repository().FindByID(ctx, inv.RecipientID); err != nil {
			return err
		}
		if owner, err = m.users.Repository().FindByID(ctx, target.OwnerID); err != nil {
			return err
		}
		if ansr, err = m.users.Repository().FindByID(ctx, answererID); err != nil {
			return err
		}

		inv.Status = status
		if err := m.repo.Update(ctx, inv); err != nil {
			return err
		}
		if status == domain.InvitationRefused {
			return nil
		}

		if err := m.join(ctx, target, rcp); err != nil {
			return err
		}
		refused, err := m.repo.RefuseWaiting(ctx, rcp.ID, inv.InvitableType, inv.ID)
		if err != nil {
			return err
		}
		if refused > 0 {
			m.Logger().InfoContext(ctx, "waiting invitations refused", "recipient_id", rcp.ID, "count", refused)
		}
		if target.Type == domain.InvitableAnnouncement && rcp.GroupID != nil {
			cascaded, err = m.inviteGroup(ctx, target, rcp)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	m.Audit(ctx, "answered", inv.ID, "status", string(status))
	if m.recorder != nil {
		m.recorder.InvitationAnswered(string(inv.InvitableType), string(status))
	}
	notify := party(owner)
	if inv.SourceType == domain.SourceSearcher {
		notify = party(rcp)
	}
	m.dispatcher.Publish(ctx, event.InvitationAnswered{
		InvitationID:  inv.ID,
		InvitableType: inv.InvitableType,
		InvitableID:   inv.InvitableID,
		Status:        status,
		Answerer:      party(ansr),
		Notify:        notify,
	})
	for _, c := range cascaded {
		m.dispatcher.Publish(ctx, event.InvitationCreated{
			InvitationID:  c.invitation.ID,
			InvitableType: c.invitation.InvitableType,
			InvitableID:   c.invitation.InvitableID,
			SourceType:    c.invitation.SourceType,
			Sender:        party(owner),
			Notify:        c.recipient,
		})
	}
	return m.Mapper().ToDto(inv), nil
}

// join makes u a candidate of an announcement or a member of a group.
func (m *Manager) join(ctx context.Context, target *Invitable, u *domain.User) error {
	if target.Includes(u.ID) {
		return domain.NewInvalidInvitee("user already joined the " + string(target.Type))
	}
	switch target.Type {
	case domain.InvitableAnnouncement:
		return m.announcements.AddCandidate(ctx, target.ID, u.ID)
	default:
		if u.GroupID != nil {
			return domain.NewInvalidInvitee("user already belongs to a group")
		}
		_, err := m.groups.AddMember(ctx, target.ID, u.ID)
		return err
	}
}

type invited struct {
	invitation domain.Invitation
	recipient  event.Party
}

// inviteGroup invites the other members of u's group to the announcement,
// skipping those already candidates or waiting for an answer.
func (m *Manager) inviteGroup(ctx context.Context, target *Invitable, u *domain.User) ([]invited, error) {
	members, err := m.users.Repository().FindByGroup(ctx, *u.GroupID)
	if err != nil {
		return nil, err
	}
	var created []invited
	for _, member := range members {
		if member.ID == u.ID || member.ID == target.OwnerID || target.Includes(member.ID) {
			continue
		}
		waiting, err := m.repo.HasWaiting(ctx, target.Type, target.ID, member.ID)
		if err != nil {
			return nil, err
		}
		if waiting {
			continue
		}
		inv, err := m.Mapper().ToEntity(ctx, &InvitationDto{
			InvitableType: target.Type,
			InvitableID:   target.ID,
			RecipientID:   member.ID,
			SourceType:    domain.SourceInvitable,
			Status:        domain.InvitationWaiting,
		})
		if err != nil {
			return nil, err
		}
		if err := m.repo.Create(ctx, inv); err != nil {
			return nil, err
		}
		created = append(created, invited{invitation: *inv, recipient: party(inv.Recipient)})
	}
	if len(created) > 0 {
		m.Logger().InfoContext(ctx, "group members invited", "announcement_id", target.ID, "count", len(created))
	}
	return created, nil
}

// ListByInvitable returns one page of the invitations of an invitable.
func (m *Manager) ListByInvitable(ctx context.Context, typ domain.InvitableType, id uint, p pkg.Pageable) (*pkg.Page[InvitationDto], error) {
	return m.Search(ctx, &Filter{Pageable: p, InvitableType: typ, InvitableID: id})
}

// ListByRecipient returns one page of the invitations of a user.
func (m *Manager) ListByRecipient(ctx context.Context, recipientID uint, p pkg.Pageable) (*pkg.Page[InvitationDto], error) {
	return m.Search(ctx, &Filter{Pageable: p, RecipientID: recipientID})
}

func party(u *domain.User) event.Party {
	if u == nil {
		return event.Party{}
	}
	return event.Party{ID: u.ID, Email: u.Email, Name: u.DisplayName()}
}
