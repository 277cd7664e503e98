package crud

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Mapper converts between an entity and its DTO. Both directions map nil to nil.
type Mapper[E any, D any] interface {
	ToDto(e *E) *D
	// ToEntity may look up related entities to resolve relationship ids.
	ToEntity(ctx context.Context, d *D) (*E, error)
}

// DeleteHook runs inside the delete transaction before the entity is removed.
// Modules use it to cascade deletions to the resources they own.
type DeleteHook[E any] func(ctx context.Context, e *E) error

// Manager implements the read and delete operations shared by every resource
// on top of a Repository and a Mapper. Resource managers embed it.
type Manager[E any, D any] struct {
	name     string
	db       *gorm.DB
	repo     Repository[E]
	mapper   Mapper[E, D]
	logger   *slog.Logger
	onDelete []DeleteHook[E]
}

// NewManager creates a Manager for the resource called name.
func NewManager[E any, D any](name string, db *gorm.DB, repo Repository[E], mapper Mapper[E, D], logger *slog.Logger) *Manager[E, D] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager[E, D]{
		name:   name,
		db:     db,
		repo:   repo,
		mapper: mapper,
		logger: logger.With("resource", name),
	}
}

// OnDelete registers a hook run before each entity removal. Hooks run in
// registration order; the first error aborts the deletion.
func (m *Manager[E, D]) OnDelete(hook DeleteHook[E]) {
	m.onDelete = append(m.onDelete, hook)
}

// Logger returns the resource-scoped logger.
func (m *Manager[E, D]) Logger() *slog.Logger {
	return m.logger
}

// DB returns the base connection, used to open transactions.
func (m *Manager[E, D]) DB() *gorm.DB {
	return m.db
}

// Mapper returns the entity/DTO mapper.
func (m *Manager[E, D]) Mapper() Mapper[E, D] {
	return m.mapper
}

// Audit logs a mutation of the resource.
func (m *Manager[E, D]) Audit(ctx context.Context, action string, id uint, attrs ...any) {
	m.logger.InfoContext(ctx, m.name+" "+action, append([]any{"id", id}, attrs...)...)
}

// List returns one page of every entity.
func (m *Manager[E, D]) List(ctx context.Context, p pkg.Pageable) (*pkg.Page[D], error) {
	p, err := pkg.NewPageable(p.Page, p.Size, p.Sorts...)
	if err != nil {
		return nil, err
	}
	rows, total, err := m.repo.FindPage(ctx, p)
	if err != nil {
		return nil, err
	}
	return m.toPage(p, rows, total), nil
}

// FindAll returns every entity without pagination.
func (m *Manager[E, D]) FindAll(ctx context.Context) ([]D, error) {
	rows, err := m.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return m.toDtos(rows), nil
}

// CountAll returns the number of entities.
func (m *Manager[E, D]) CountAll(ctx context.Context) (int64, error) {
	return m.repo.Count(ctx)
}

// Search returns one page of the entities matching filter.
func (m *Manager[E, D]) Search(ctx context.Context, filter pkg.Searchable) (*pkg.Page[D], error) {
	p, err := pkg.NewPageable(filter.PageRequest().Page, filter.PageRequest().Size, filter.PageRequest().Sorts...)
	if err != nil {
		return nil, err
	}
	*filter.PageRequest() = p
	rows, total, err := m.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return m.toPage(p, rows, total), nil
}

// CountBy returns the number of entities matching filter.
func (m *Manager[E, D]) CountBy(ctx context.Context, filter pkg.Searchable) (int64, error) {
	return m.repo.CountBy(ctx, filter)
}

// Read returns the DTO of the entity with id, or domain.ErrNotFound.
func (m *Manager[E, D]) Read(ctx context.Context, id uint) (*D, error) {
	e, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.mapper.ToDto(e), nil
}

// Get is Read: references are always resolved eagerly.
func (m *Manager[E, D]) Get(ctx context.Context, id uint) (*D, error) {
	return m.Read(ctx, id)
}

// Entity returns the entity with id, or domain.ErrNotFound.
func (m *Manager[E, D]) Entity(ctx context.Context, id uint) (*E, error) {
	return m.repo.FindByID(ctx, id)
}

// Delete removes the entity with id after running the delete hook.
// With flush the removal commits before Delete returns; otherwise it joins
// the transaction bound to ctx, if any.
func (m *Manager[E, D]) Delete(ctx context.Context, id uint, flush bool) error {
	err := m.run(ctx, flush, func(ctx context.Context) error {
		e, err := m.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return m.remove(ctx, e)
	})
	if err != nil {
		return err
	}
	m.Audit(ctx, "deleted", id)
	return nil
}

// DeleteAll removes every entity one by one through the delete hook.
func (m *Manager[E, D]) DeleteAll(ctx context.Context, flush bool) error {
	var n int
	err := m.run(ctx, flush, func(ctx context.Context) error {
		rows, err := m.repo.FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range rows {
			if err := m.remove(ctx, &rows[i]); err != nil {
				return err
			}
		}
		n = len(rows)
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, m.name+" deleted all", "count", n)
	return nil
}

func (m *Manager[E, D]) remove(ctx context.Context, e *E) error {
	for _, hook := range m.onDelete {
		if err := hook(ctx, e); err != nil {
			return err
		}
	}
	return m.repo.Delete(ctx, e)
}

func (m *Manager[E, D]) run(ctx context.Context, flush bool, fn func(ctx context.Context) error) error {
	if flush {
		return pkg.WithTxContext(ctx, m.db, fn)
	}
	return fn(ctx)
}

func (m *Manager[E, D]) toDtos(rows []E) []D {
	dtos := make([]D, 0, len(rows))
	for i := range rows {
		if d := m.mapper.ToDto(&rows[i]); d != nil {
			dtos = append(dtos, *d)
		}
	}
	return dtos
}

func (m *Manager[E, D]) toPage(p pkg.Pageable, rows []E, total int64) *pkg.Page[D] {
	return pkg.NewPage(p, m.toDtos(rows), total)
}
