package group

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	files, err := pkg.NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	adm := security.NewAccessDecisionManager(nil, Voter{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Actor"); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			u, err := f.users.Entity(c.Request.Context(), uint(id))
			require.NoError(t, err)
			c.Request = c.Request.WithContext(security.WithActor(c.Request.Context(), security.NewActor(u)))
		}
		c.Next()
	})
	NewModule(NewHandler(f.groups, adm, files, f.events)).RegisterRoutes(r.Group("/rest"))
	return r
}

func serve(r *gin.Engine, method, path string, actor uint, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != 0 {
		req.Header.Set("X-Actor", strconv.FormatUint(uint64(actor), 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Lifecycle(t *testing.T) {
	f := newFixture(t)
	r := newRouter(t, f)
	ann := f.user(t, "ann@coloc.test")
	bob := f.user(t, "bob@coloc.test")
	cid := f.user(t, "cid@coloc.test")

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/rest/groups", 0, `{"name":"G"}`).Code)
	w := serve(r, http.MethodPost, "/rest/groups", ann.ID, `{"name":"Flatmates","budget":900}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data GroupDto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := location(created.Data.ID)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(r, http.MethodPost, "/rest/groups", ann.ID, `{"name":"Again"}`).Code)

	member := `{"user_id":` + strconv.FormatUint(uint64(bob.ID), 10) + `}`
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, path+"/members", bob.ID, member).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, path+"/members", ann.ID, member).Code)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, path+"/messages", bob.ID, `{"content":"hi"}`).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, path+"/messages", cid.ID, `{"content":"hi"}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path+"/messages", ann.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, path+"/messages", cid.ID, "").Code)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPatch, path, bob.ID, `{"budget":1}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPatch, path, ann.ID, `{"budget":1000}`).Code)

	annPath := path + "/members/" + strconv.FormatUint(uint64(ann.ID), 10)
	bobPath := path + "/members/" + strconv.FormatUint(uint64(bob.ID), 10)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, annPath, bob.ID, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(r, http.MethodDelete, annPath, ann.ID, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, bobPath, bob.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, bobPath, bob.ID, "").Code, "no longer a member")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, 0, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path+"/members", 0, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/rest/groups?name_contains=Flat", 0, "").Code)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, path, bob.ID, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, path, ann.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, path, 0, "").Code)
}

func TestHandler_RemoveFileLogsFailure(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	files, err := pkg.NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	h := NewHandler(NewManager(f.db, NewRepository(f.db), f.users, nil, logger), nil, files, nil)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.removeFile(c, "../outside.png")

	assert.Contains(t, buf.String(), "picture removal failed")
	assert.Contains(t, buf.String(), "../outside.png")
}
