package pkg

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Direction is a sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// Order is one (property, direction) sort pair.
type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

// Pageable is a page request: 1-based page number, page size and ordered sorts.
type Pageable struct {
	Page  int     `json:"page" form:"page"`
	Size  int     `json:"size" form:"size"`
	Sorts []Order `json:"sorts,omitempty" form:"-"`
}

// Searchable is implemented by filters embedding a Pageable.
type Searchable interface {
	PageRequest() *Pageable
}

// PageRequest returns p itself, so any struct embedding Pageable is Searchable.
func (p *Pageable) PageRequest() *Pageable {
	return p
}

// SortFields maps exposed sort properties to their database column.
type SortFields map[string]string

// validColumn matches only alphanumeric characters, underscores and dots.
var validColumn = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// NewPageable builds a Pageable, applying defaults to zero values and
// rejecting negative values, oversized pages and pages whose offset
// overflows an int.
func NewPageable(page, size int, sorts ...Order) (Pageable, error) {
	p := Pageable{Page: page, Size: size, Sorts: sorts}
	if err := p.normalize(); err != nil {
		return Pageable{}, err
	}
	return p, nil
}

// DefaultPageable returns page 1 with the default size, sorted by id.
func DefaultPageable() Pageable {
	return Pageable{Page: DefaultPage, Size: DefaultPageSize, Sorts: []Order{{Property: "id", Direction: ASC}}}
}

func (p *Pageable) normalize() error {
	fields := map[string]string{}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Page < 1 {
		fields["page"] = "must be greater than or equal to 1"
	}
	if p.Size < 1 {
		fields["size"] = "must be greater than or equal to 1"
	} else if p.Size > MaxPageSize {
		fields["size"] = fmt.Sprintf("must be less than or equal to %d", MaxPageSize)
	} else if p.Page > math.MaxInt/p.Size {
		fields["page"] = fmt.Sprintf("must be less than or equal to %d", math.MaxInt/p.Size)
	}
	if len(p.Sorts) == 0 {
		p.Sorts = []Order{{Property: "id", Direction: ASC}}
	}
	for i := range p.Sorts {
		d := Direction(strings.ToUpper(strings.TrimSpace(string(p.Sorts[i].Direction))))
		if d == "" {
			d = ASC
		}
		if d != ASC && d != DESC {
			fields["order"] = fmt.Sprintf("unknown direction %q", p.Sorts[i].Direction)
		}
		p.Sorts[i].Direction = d
		p.Sorts[i].Property = strings.TrimSpace(p.Sorts[i].Property)
	}
	if len(fields) > 0 {
		return domain.NewValidationError("invalid pagination", fields)
	}
	return nil
}

// Validate normalizes p and checks every sort property against allowed.
func (p *Pageable) Validate(allowed SortFields) error {
	if err := p.normalize(); err != nil {
		return err
	}
	for _, o := range p.Sorts {
		if _, ok := allowed[o.Property]; !ok {
			return domain.NewValidationError("invalid pagination", map[string]string{
				"sort": fmt.Sprintf("unknown property %q", o.Property),
			})
		}
	}
	return nil
}

// Offset returns the number of rows skipped before the page.
func (p Pageable) Offset() int {
	return (p.Page - 1) * p.Size
}

// ParsePageable reads page, size, sort and order from the query string.
//
// sort is a comma-separated list of properties, order the matching list of
// directions; a missing direction means ASC and a "-" prefix means DESC.
func ParsePageable(c *gin.Context, allowed SortFields) (Pageable, error) {
	fields := map[string]string{}
	page, err := queryInt(c, "page")
	if err != nil {
		fields["page"] = "must be an integer"
	}
	size, err := queryInt(c, "size")
	if err != nil {
		fields["size"] = "must be an integer"
	}
	if len(fields) > 0 {
		return Pageable{}, domain.NewValidationError("invalid pagination", fields)
	}

	p := Pageable{Page: page, Size: size, Sorts: parseSorts(c.Query("sort"), c.Query("order"))}
	if err := p.Validate(allowed); err != nil {
		return Pageable{}, err
	}
	return p, nil
}

// BindListQuery binds filter fields and pagination from the query string.
// On failure it sends an error response and returns false.
func BindListQuery(c *gin.Context, s Searchable, allowed SortFields) bool {
	if err := c.ShouldBindQuery(s); err != nil {
		validationErrorWithType(c, err, s)
		return false
	}
	p, err := ParsePageable(c, allowed)
	if err != nil {
		Error(c, err)
		return false
	}
	*s.PageRequest() = p
	return true
}

// BindSearch binds a JSON search body and validates its pagination part.
// On failure it sends an error response and returns false.
func BindSearch(c *gin.Context, s Searchable, allowed SortFields) bool {
	if err := c.ShouldBindJSON(s); err != nil {
		validationErrorWithType(c, err, s)
		return false
	}
	if err := s.PageRequest().Validate(allowed); err != nil {
		Error(c, err)
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseSorts(sortParam, orderParam string) []Order {
	if strings.TrimSpace(sortParam) == "" {
		return nil
	}
	props := strings.Split(sortParam, ",")
	orders := strings.Split(orderParam, ",")

	sorts := make([]Order, 0, len(props))
	for i, prop := range props {
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		dir := ASC
		if i < len(orders) && strings.TrimSpace(orders[i]) != "" {
			dir = Direction(strings.ToUpper(strings.TrimSpace(orders[i])))
		}
		if strings.HasPrefix(prop, "-") {
			prop = strings.TrimPrefix(prop, "-")
			dir = DESC
		}
		sorts = append(sorts, Order{Property: prop, Direction: dir})
	}
	return sorts
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(p Pageable) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}

// Sort returns a GORM scope that applies ORDER BY for each sort pair, in order.
// An unknown property adds a validation error to the statement.
func Sort(p Pageable, allowed SortFields) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, o := range p.Sorts {
			column, ok := allowed[o.Property]
			if !ok || !validColumn.MatchString(column) {
				_ = db.AddError(domain.NewValidationError("invalid pagination", map[string]string{
					"sort": fmt.Sprintf("unknown property %q", o.Property),
				}))
				return db
			}
			dir := "asc"
			if o.Direction == DESC {
				dir = "desc"
			}
			db = db.Order(column + " " + dir)
		}
		return db
	}
}

// Page is one page of results, echoing the Pageable that produced it.
type Page[T any] struct {
	Pageable Pageable
	Content  []T
	Total    int64
}

// NewPage builds a Page; a nil content becomes an empty slice.
func NewPage[T any](p Pageable, content []T, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	return &Page[T]{Pageable: p, Content: content, Total: total}
}

// MapPage converts the content of a page, keeping its pagination data.
func MapPage[S, T any](src *Page[S], fn func(S) T) *Page[T] {
	content := make([]T, 0, len(src.Content))
	for _, s := range src.Content {
		content = append(content, fn(s))
	}
	return NewPage(src.Pageable, content, src.Total)
}

// HasNext reports whether rows remain after this page.
func (p *Page[T]) HasNext() bool {
	return int64(p.Pageable.Offset()+len(p.Content)) < p.Total
}

// HasPrevious reports whether the page is not the first one.
func (p *Page[T]) HasPrevious() bool {
	return p.Pageable.Page > 1
}

// TotalPages returns the number of pages needed for Total rows.
func (p *Page[T]) TotalPages() int {
	if p.Pageable.Size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.Total) / float64(p.Pageable.Size)))
}

// MarshalJSON renders the page with its derived fields.
func (p *Page[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Page        int     `json:"page"`
		Size        int     `json:"size"`
		Sorts       []Order `json:"sorts"`
		Content     []T     `json:"content"`
		Total       int64   `json:"total"`
		TotalPages  int     `json:"total_pages"`
		HasNext     bool    `json:"has_next"`
		HasPrevious bool    `json:"has_previous"`
	}{
		Page:        p.Pageable.Page,
		Size:        p.Pageable.Size,
		Sorts:       p.Pageable.Sorts,
		Content:     p.Content,
		Total:       p.Total,
		TotalPages:  p.TotalPages(),
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	})
}
