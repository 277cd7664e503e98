// Package crud holds the generic persistence and DTO management layer shared
// by every resource module.
package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
)

// Repository is the storage contract a Manager works on.
type Repository[E any] interface {
	FindPage(ctx context.Context, p pkg.Pageable) ([]E, int64, error)
	FindAll(ctx context.Context) ([]E, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, filter pkg.Searchable) ([]E, int64, error)
	CountBy(ctx context.Context, filter pkg.Searchable) (int64, error)
	FindByID(ctx context.Context, id uint) (*E, error)
	Create(ctx context.Context, e *E) error
	Update(ctx context.Context, e *E) error
	Delete(ctx context.Context, e *E) error
}

// Predicate narrows a query to the rows matching filter.
type Predicate func(db *gorm.DB, filter pkg.Searchable) *gorm.DB

// GormRepository implements Repository with GORM. Resource repositories embed
// it and add their own queries.
type GormRepository[E any] struct {
	db         *gorm.DB
	sortFields pkg.SortFields
	preloads   []string
	predicate  Predicate
}

// Option configures a GormRepository.
type Option func(*options)

type options struct {
	preloads  []string
	predicate Predicate
}

// WithPreload eager-loads the named associations on every read.
func WithPreload(assoc ...string) Option {
	return func(o *options) { o.preloads = append(o.preloads, assoc...) }
}

// WithPredicate sets the filter predicate used by Search and CountBy.
func WithPredicate(p Predicate) Option {
	return func(o *options) { o.predicate = p }
}

// NewGormRepository creates a repository for E sorted through sortFields.
func NewGormRepository[E any](db *gorm.DB, sortFields pkg.SortFields, opts ...Option) *GormRepository[E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &GormRepository[E]{db: db, sortFields: sortFields, preloads: o.preloads, predicate: o.predicate}
}

// Conn returns the handle for ctx: the bound transaction if any, the base
// connection otherwise.
func (r *GormRepository[E]) Conn(ctx context.Context) *gorm.DB {
	return pkg.Conn(ctx, r.db)
}

// SortFields returns the sortable properties of E.
func (r *GormRepository[E]) SortFields() pkg.SortFields {
	return r.sortFields
}

func (r *GormRepository[E]) read(ctx context.Context) *gorm.DB {
	db := r.Conn(ctx).Model(new(E))
	for _, p := range r.preloads {
		db = db.Preload(p)
	}
	return db
}

// FindPage returns one page of every row, plus the total row count.
func (r *GormRepository[E]) FindPage(ctx context.Context, p pkg.Pageable) ([]E, int64, error) {
	return r.page(ctx, r.Conn(ctx).Model(new(E)), p)
}

// Search returns one page of the rows matching filter, plus their count.
func (r *GormRepository[E]) Search(ctx context.Context, filter pkg.Searchable) ([]E, int64, error) {
	return r.page(ctx, r.filtered(ctx, filter), *filter.PageRequest())
}

func (r *GormRepository[E]) page(ctx context.Context, base *gorm.DB, p pkg.Pageable) ([]E, int64, error) {
	if err := p.Validate(r.sortFields); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, MapError(err)
	}

	var rows []E
	q := base.Session(&gorm.Session{})
	for _, assoc := range r.preloads {
		q = q.Preload(assoc)
	}
	if err := q.Scopes(pkg.Sort(p, r.sortFields), pkg.Paginate(p)).Find(&rows).Error; err != nil {
		return nil, 0, MapError(err)
	}
	return rows, total, nil
}

func (r *GormRepository[E]) filtered(ctx context.Context, filter pkg.Searchable) *gorm.DB {
	db := r.Conn(ctx).Model(new(E))
	if r.predicate != nil && filter != nil {
		db = r.predicate(db, filter)
	}
	return db
}

// FindAll returns every row, unpaginated.
func (r *GormRepository[E]) FindAll(ctx context.Context) ([]E, error) {
	var rows []E
	if err := r.read(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}
	return rows, nil
}

// Count returns the number of rows.
func (r *GormRepository[E]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.Conn(ctx).Model(new(E)).Count(&n).Error; err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountBy returns the number of rows matching filter.
func (r *GormRepository[E]) CountBy(ctx context.Context, filter pkg.Searchable) (int64, error) {
	var n int64
	if err := r.filtered(ctx, filter).Count(&n).Error; err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// FindByID retrieves a row by its primary key.
func (r *GormRepository[E]) FindByID(ctx context.Context, id uint) (*E, error) {
	var e E
	if err := r.read(ctx).First(&e, id).Error; err != nil {
		return nil, MapError(err)
	}
	return &e, nil
}

// Create inserts e. Associations are never written through the parent.
func (r *GormRepository[E]) Create(ctx context.Context, e *E) error {
	return MapError(r.Conn(ctx).Omit(clause.Associations).Create(e).Error)
}

// Update saves every column of e.
func (r *GormRepository[E]) Update(ctx context.Context, e *E) error {
	return MapError(r.Conn(ctx).Omit(clause.Associations).Save(e).Error)
}

// Delete removes e.
func (r *GormRepository[E]) Delete(ctx context.Context, e *E) error {
	result := r.Conn(ctx).Delete(e)
	if result.Error != nil {
		return MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MapError converts GORM errors to domain errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
