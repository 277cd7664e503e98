package app

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockModule struct {
	called bool
}

func (m *mockModule) RegisterRoutes(api *gin.RouterGroup) {
	m.called = true
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// --- Health check tests ---

func TestHealthHandler_OK(t *testing.T) {
	r := gin.New()

	// Use a real SQLite in-memory DB for a passing ping.
	db := openTestSQLiteDB(t)

	r.GET("/health", healthHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	comps, ok := body["components"].(map[string]any)
	if !ok {
		t.Fatal("missing components")
	}
	if comps["database"] != "ok" {
		t.Errorf("expected database ok, got %v", comps["database"])
	}
}

func TestHealthHandler_DBDown(t *testing.T) {
	r := gin.New()

	db := openTestSQLiteDB(t)
	// Close the underlying sql.DB so Ping fails.
	sqlDB, _ := db.DB()
	sqlDB.Close()

	r.GET("/health", healthHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected status degraded, got %v", body["status"])
	}
	comps := body["components"].(map[string]any)
	if comps["database"] != "error" {
		t.Errorf("expected database error, got %v", comps["database"])
	}
}

func TestHealthHandler_UsesRequestContextTimeout(t *testing.T) {
	registerBlockingPingDriver()

	sqlDB, err := sql.Open(blockingPingDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	r := gin.New()
	r.GET("/health", healthHandler(db))

	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	t.Cleanup(cancel)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(reqCtx)

	start := time.Now()
	r.ServeHTTP(w, req)
	elapsed := time.Since(start)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if elapsed > 300*time.Millisecond {
		t.Fatalf("expected health response to honor request context timeout, elapsed=%v", elapsed)
	}
}

// --- NoRoute / NoMethod tests ---

func TestNoRouteHandler_JSON(t *testing.T) {
	r := gin.New()
	r.NoRoute(noRouteHandler())

	w := serve(r, http.MethodGet, "/rest/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["code"] != float64(http.StatusNotFound) || body["message"] != "not found" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestNoMethodHandler_JSON(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.GET("/rest/things", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.NoMethod(noMethodHandler())

	w := serve(r, http.MethodDelete, "/rest/things")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] != "method not allowed" {
		t.Errorf("unexpected body %v", body)
	}
}

// --- RegisterRoutes tests ---

func TestRegisterRoutes_NilRouter(t *testing.T) {
	if err := RegisterRoutes(nil, &RouteDeps{Modules: []Module{&mockModule{}}}); err == nil {
		t.Fatal("expected error for nil router")
	}
}

func TestRegisterRoutes_NilDeps(t *testing.T) {
	if err := RegisterRoutes(gin.New(), nil); err == nil {
		t.Fatal("expected error for nil deps")
	}
}

func TestRegisterRoutes_NoModules(t *testing.T) {
	if err := RegisterRoutes(gin.New(), &RouteDeps{}); err == nil {
		t.Fatal("expected error for empty module list")
	}
}

func TestRegisterRoutes_NilModuleEntry(t *testing.T) {
	err := RegisterRoutes(gin.New(), &RouteDeps{Modules: []Module{&mockModule{}, nil}})
	if err == nil || !strings.Contains(err.Error(), "index 1") {
		t.Fatalf("expected nil module error, got %v", err)
	}
}

func TestRegisterRoutes_ModulesAreMountedUnderRest(t *testing.T) {
	r := gin.New()
	m := &mockModule{}
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{m}, DB: openTestSQLiteDB(t)}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	if !m.called {
		t.Fatal("module RegisterRoutes was not called")
	}
	if w := serve(r, http.MethodGet, "/rest/ping"); w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("GET /rest/ping = %d %q", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodGet, "/ping"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /ping = %d, want 404", w.Code)
	}
}

func TestRegisterRoutes_MetricsOnlyWhenEnabled(t *testing.T) {
	r := gin.New()
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{&mockModule{}}}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	if w := serve(r, http.MethodGet, "/metrics"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /metrics without metrics = %d, want 404", w.Code)
	}

	r = gin.New()
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{&mockModule{}}, Metrics: metrics.New("routes_test")}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	if w := serve(r, http.MethodGet, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", w.Code)
	}
}

// --- Upload tests ---

func TestUploadHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r := gin.New()
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{&mockModule{}}, UploadDir: dir}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}

	w := serve(r, http.MethodGet, "/uploads/pic.png")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("Cache-Control = %q", cc)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "/uploads/none.png"},
		{name: "dot file", path: "/uploads/.hidden"},
		{name: "directory", path: "/uploads/sub"},
		{name: "encoded traversal", path: "/uploads/..%2fsecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(r, http.MethodGet, tt.path); w.Code != http.StatusNotFound {
				t.Fatalf("GET %s = %d, want 404", tt.path, w.Code)
			}
		})
	}
}

// --- openTestSQLiteDB helper ---

func openTestSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db
}

const blockingPingDriverName = "blocking_ping"

var registerBlockingPingDriverOnce sync.Once

func registerBlockingPingDriver() {
	registerBlockingPingDriverOnce.Do(func() {
		sql.Register(blockingPingDriverName, blockingPingDriver{})
	})
}

type blockingPingDriver struct{}

func (blockingPingDriver) Open(string) (driver.Conn, error) {
	return blockingPingConn{}, nil
}

type blockingPingConn struct{}

func (blockingPingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (blockingPingConn) Close() error                        { return nil }
func (blockingPingConn) Begin() (driver.Tx, error)           { return blockingPingTx{}, nil }

func (blockingPingConn) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type blockingPingTx struct{}

func (blockingPingTx) Commit() error   { return nil }
func (blockingPingTx) Rollback() error { return nil }
