package visit

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/crud"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/module/announcement"
	"github.com/simp-lee/colocmatching/internal/module/group"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Recorder counts recorded visits; *metrics.Metrics implements it.
type Recorder interface {
	VisitRecorded(visitedType string)
}

// Manager records and lists visits.
type Manager struct {
	*crud.Manager[domain.Visit, VisitDto]
	repo     *Repository
	recorder Recorder
	now      func() time.Time
}

// NewManager creates a visit Manager. Visits are deleted with the visited
// resource and with the visitor.
func NewManager(db *gorm.DB, repo *Repository, users *user.Manager, announcements *announcement.Manager,
	groups *group.Manager, recorder Recorder, logger *slog.Logger) *Manager {
	m := &Manager{
		Manager:  crud.NewManager[domain.Visit, VisitDto]("visit", db, repo, Mapper{}, logger),
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
	users.OnDelete(func(ctx context.Context, u *domain.User) error {
		if err := repo.DeleteByVisited(ctx, domain.VisitableUser, u.ID); err != nil {
			return err
		}
		return repo.DeleteByVisitor(ctx, u.ID)
	})
	announcements.OnDelete(func(ctx context.Context, a *domain.Announcement) error {
		return repo.DeleteByVisited(ctx, domain.VisitableAnnouncement, a.ID)
	})
	groups.OnDelete(func(ctx context.Context, g *domain.Group) error {
		return repo.DeleteByVisited(ctx, domain.VisitableGroup, g.ID)
	})
	return m
}

// Subscribe records a visit for every ResourceVisited event published on d.
func (m *Manager) Subscribe(d *event.Dispatcher) {
	d.Subscribe(event.NameResourceVisited, func(ctx context.Context, e event.Event) error {
		_, err := m.Record(ctx, e.(event.ResourceVisited))
		return err
	})
}

// Record stores a visit. Owners viewing their own resource and anonymous
// visitors are not recorded; Record then returns nil.
func (m *Manager) Record(ctx context.Context, e event.ResourceVisited) (*VisitDto, error) {
	if e.VisitorID == 0 || e.VisitorID == e.OwnerID {
		return nil, nil
	}
	at := e.VisitedAt
	if at.IsZero() {
		at = m.now()
	}
	v := &domain.Visit{VisitedType: e.VisitedType, VisitedID: e.VisitedID, VisitorID: e.VisitorID, VisitedAt: at.UTC()}
	if err := m.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	if m.recorder != nil {
		m.recorder.VisitRecorded(string(e.VisitedType))
	}
	m.Logger().DebugContext(ctx, "visit recorded", "visited_type", string(e.VisitedType), "visited_id", e.VisitedID, "visitor_id", e.VisitorID)
	return m.Mapper().ToDto(v), nil
}

// ListByVisited returns one page of the visits of a visitable.
func (m *Manager) ListByVisited(ctx context.Context, typ domain.VisitableType, id uint, p pkg.Pageable) (*pkg.Page[VisitDto], error) {
	return m.Search(ctx, &Filter{Pageable: p, VisitedType: typ, VisitedID: id})
}
