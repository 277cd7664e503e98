package invitation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/module/announcement"
	"github.com/simp-lee/colocmatching/internal/module/group"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	adm := security.NewAccessDecisionManager(nil, Voter{}, user.Voter{}, announcement.Voter{}, group.Voter{})

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
	NewModule(NewHandler(f.invitations, f.users, adm)).RegisterRoutes(r.Group("/rest"))
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

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHandler_Lifecycle(t *testing.T) {
	f := newFixture(t)
	r := newRouter(t, f)
	owner := f.user(t, "owner@coloc.test", domain.UserTypeProposal)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	cid := f.user(t, "cid@coloc.test", domain.UserTypeSearch)
	a := f.announcement(t, owner.ID)
	invitations := "/rest/announcements/" + idString(a.ID) + "/invitations"

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, invitations, 0, `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		serve(r, http.MethodPost, invitations, owner.ID, `{"recipient_id":`+idString(owner.ID)+`}`).Code)

	w := serve(r, http.MethodPost, invitations, owner.ID, `{"recipient_id":`+idString(bob.ID)+`,"message":"join us"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data InvitationDto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := location(created.Data.ID)
	assert.Equal(t, path, w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, invitations, owner.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, invitations, bob.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/rest/announcements/999/invitations", owner.ID, "").Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, bob.ID, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, owner.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, path, cid.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/rest/invitations/999", bob.ID, "").Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/rest/users/"+idString(bob.ID)+"/invitations", bob.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/rest/users/"+idString(bob.ID)+"/invitations", cid.ID, "").Code)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, path+"/answer", owner.ID, `{"status":"ACCEPTED"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, path+"/answer", bob.ID, `{"status":"WAITING"}`).Code)
	w = serve(r, http.MethodPost, path+"/answer", bob.ID, `{"status":"ACCEPTED"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var answered struct {
		Data InvitationDto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answered))
	assert.Equal(t, domain.InvitationAccepted, answered.Data.Status)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(r, http.MethodPost, path+"/answer", bob.ID, `{"status":"REFUSED"}`).Code)

	w = serve(r, http.MethodPost, invitations, cid.ID, `{}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/rest/invitations/searches", cid.ID, `{}`).Code)
}

func TestHandler_AdminSearch(t *testing.T) {
	f := newFixture(t)
	r := newRouter(t, f)
	ann := f.user(t, "ann@coloc.test", domain.UserTypeSearch)
	bob := f.user(t, "bob@coloc.test", domain.UserTypeSearch)
	admin := f.user(t, "admin@coloc.test", domain.UserTypeSearch)
	require.NoError(t, f.db.Model(&domain.User{}).Where("id = ?", admin.ID).Update("roles", domain.RoleAdmin).Error)
	g := f.group(t, ann.ID)

	w := serve(r, http.MethodPost, "/rest/groups/"+idString(g.ID)+"/invitations", bob.ID, `{}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(r, http.MethodPost, "/rest/invitations/searches", admin.ID, `{"invitable_type":"group","status":"WAITING"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data struct {
			Content []InvitationDto `json:"content"`
			Total   int64           `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Data.Total)
	assert.Equal(t, domain.SourceSearcher, page.Data.Content[0].SourceType)

	assert.Equal(t, http.StatusBadRequest,
		serve(r, http.MethodPost, "/rest/invitations/searches", admin.ID, `{"status":"LOST"}`).Code)
}
