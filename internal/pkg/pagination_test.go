package pkg

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/simp-lee/colocmatching/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSortFields = SortFields{
	"id":        "id",
	"name":      "name",
	"createdAt": "created_at",
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestParsePageable_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	p, err := ParsePageable(c, testSortFields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Page != 1 {
		t.Errorf("expected Page=1, got %d", p.Page)
	}
	if p.Size != 20 {
		t.Errorf("expected Size=20, got %d", p.Size)
	}
	if len(p.Sorts) != 1 || p.Sorts[0] != (Order{Property: "id", Direction: ASC}) {
		t.Errorf("expected default sort id ASC, got %v", p.Sorts)
	}
}

func TestParsePageable_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"page":  {"3"},
		"size":  {"50"},
		"sort":  {"name,createdAt,id"},
		"order": {"desc,asc"},
	})
	p, err := ParsePageable(c, testSortFields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Page != 3 || p.Size != 50 {
		t.Errorf("expected page 3 size 50, got page %d size %d", p.Page, p.Size)
	}
	want := []Order{
		{Property: "name", Direction: DESC},
		{Property: "createdAt", Direction: ASC},
		{Property: "id", Direction: ASC},
	}
	if len(p.Sorts) != len(want) {
		t.Fatalf("expected %d sorts, got %v", len(want), p.Sorts)
	}
	for i := range want {
		if p.Sorts[i] != want[i] {
			t.Errorf("sort[%d] = %v, want %v", i, p.Sorts[i], want[i])
		}
	}
}

func TestParsePageable_MinusPrefixMeansDesc(t *testing.T) {
	c := newTestContext(url.Values{"sort": {"-createdAt"}})
	p, err := ParsePageable(c, testSortFields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Sorts[0] != (Order{Property: "createdAt", Direction: DESC}) {
		t.Errorf("expected createdAt DESC, got %v", p.Sorts[0])
	}
}

func TestParsePageable_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		field string
	}{
		{"negative page", url.Values{"page": {"-1"}}, "page"},
		{"negative size", url.Values{"size": {"-5"}}, "size"},
		{"size above maximum", url.Values{"size": {"101"}}, "size"},
		{"page offset overflows", url.Values{"page": {"184467440737095516"}, "size": {"100"}}, "page"},
		{"non numeric size", url.Values{"size": {"abc"}}, "size"},
		{"unknown sort property", url.Values{"sort": {"password"}}, "sort"},
		{"sql injection in sort", url.Values{"sort": {"name;DROP TABLE users"}}, "sort"},
		{"unknown direction", url.Values{"sort": {"name"}, "order": {"up"}}, "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePageable(newTestContext(tt.query), testSortFields)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			appErr := err.(*domain.AppError)
			if _, ok := appErr.Fields[tt.field]; !ok {
				t.Errorf("expected field error on %q, got %v", tt.field, appErr.Fields)
			}
		})
	}
}

func TestNewPageable(t *testing.T) {
	p, err := NewPageable(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != DefaultPage || p.Size != DefaultPageSize {
		t.Errorf("expected defaults, got %+v", p)
	}

	if _, err := NewPageable(1, MaxPageSize); err != nil {
		t.Errorf("size %d should be accepted: %v", MaxPageSize, err)
	}
	if _, err := NewPageable(1, MaxPageSize+1); !domain.IsValidation(err) {
		t.Errorf("size %d should be rejected, got %v", MaxPageSize+1, err)
	}

	if _, err := NewPageable(math.MaxInt/50, MaxPageSize); !domain.IsValidation(err) {
		t.Errorf("page %d should be rejected, got %v", math.MaxInt/50, err)
	}
	last, err := NewPageable(math.MaxInt/MaxPageSize, MaxPageSize)
	if err != nil {
		t.Fatalf("largest page should be accepted: %v", err)
	}
	if last.Offset() < 0 {
		t.Errorf("Offset() = %d, want non-negative", last.Offset())
	}
}

func TestPageable_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{5, 7, 28},
	}
	for _, tt := range tests {
		p := Pageable{Page: tt.page, Size: tt.size}
		if got := p.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d,size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestPage_Arithmetic(t *testing.T) {
	tests := []struct {
		name        string
		page, size  int
		content     int
		total       int64
		hasNext     bool
		hasPrevious bool
		totalPages  int
	}{
		{"single full page", 1, 10, 10, 10, false, false, 1},
		{"first of many", 1, 10, 10, 25, true, false, 3},
		{"middle", 2, 10, 10, 25, true, true, 3},
		{"last partial", 3, 10, 5, 25, false, true, 3},
		{"empty", 1, 20, 0, 0, false, false, 0},
		{"beyond the end", 4, 10, 0, 25, false, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(Pageable{Page: tt.page, Size: tt.size}, make([]int, tt.content), tt.total)
			if page.HasNext() != tt.hasNext {
				t.Errorf("HasNext = %v, want %v", page.HasNext(), tt.hasNext)
			}
			if page.HasPrevious() != tt.hasPrevious {
				t.Errorf("HasPrevious = %v, want %v", page.HasPrevious(), tt.hasPrevious)
			}
			if page.TotalPages() != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages(), tt.totalPages)
			}
		})
	}
}

func TestNewPage_NilContentBecomesEmptySlice(t *testing.T) {
	page := NewPage[string](DefaultPageable(), nil, 0)
	if page.Content == nil {
		t.Fatal("expected non-nil content")
	}

	body, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["content"].([]any); !ok {
		t.Errorf("expected content to render as an array, got %v", decoded["content"])
	}
	for _, key := range []string{"page", "size", "total", "total_pages", "has_next", "has_previous"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, body)
		}
	}
}

func TestMapPage(t *testing.T) {
	src := NewPage(Pageable{Page: 2, Size: 2}, []int{3, 4}, 5)
	dst := MapPage(src, func(i int) string { return string(rune('a' + i)) })

	if dst.Total != 5 || dst.Pageable.Page != 2 {
		t.Errorf("pagination data not kept: %+v", dst)
	}
	if len(dst.Content) != 2 || dst.Content[0] != "d" || dst.Content[1] != "e" {
		t.Errorf("unexpected content %v", dst.Content)
	}
	if !dst.HasNext() {
		t.Error("expected HasNext on page 2 of 3")
	}
}

// --------------- helpers for GORM scope tests ---------------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestSort(t *testing.T) {
	tests := []struct {
		name    string
		sorts   []Order
		applied bool
		wantErr bool
	}{
		{"valid asc", []Order{{"name", ASC}}, true, false},
		{"valid multi", []Order{{"name", DESC}, {"id", ASC}}, true, false},
		{"property not in allowed list", []Order{{"password", ASC}}, false, true},
		{"sql injection", []Order{{"1=1;--", ASC}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Sort(Pageable{Sorts: tt.sorts}, testSortFields)
			result := scope(newTestDB(t))
			_, hasOrder := result.Statement.Clauses["ORDER BY"]
			if hasOrder != tt.applied {
				t.Errorf("Order clause applied=%v, want %v", hasOrder, tt.applied)
			}
			if (result.Error != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", result.Error, tt.wantErr)
			}
		})
	}
}

func TestSort_UnknownPropertyAddsError(t *testing.T) {
	db := newTestDB(t)
	scope := Sort(Pageable{Sorts: []Order{{"password", ASC}}}, testSortFields)
	result := scope(db)
	if !domain.IsValidation(result.Error) {
		t.Errorf("expected validation error on statement, got %v", result.Error)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name string
		page int
		size int
	}{
		{"first page", 1, 10},
		{"second page", 2, 20},
		{"large page number", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Paginate(Pageable{Page: tt.page, Size: tt.size})
			result := scope(newTestDB(t))
			if _, hasLimit := result.Statement.Clauses["LIMIT"]; !hasLimit {
				t.Error("expected LIMIT clause to be applied")
			}
		})
	}
}
