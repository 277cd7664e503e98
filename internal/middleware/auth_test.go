package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/security"
)

type stubResolver map[string]*security.Actor

func (s stubResolver) ResolveActor(_ context.Context, token string) (*security.Actor, error) {
	if token == "broken" {
		return nil, errors.New("cache exploded")
	}
	if a, ok := s[token]; ok {
		return a, nil
	}
	return nil, domain.ErrUnauthorized
}

func setupAuthRouter() *gin.Engine {
	resolver := stubResolver{
		"user":   {ID: 1, Status: domain.UserStatusEnabled, Roles: []string{domain.RoleUser}},
		"admin":  {ID: 2, Status: domain.UserStatusEnabled, Roles: []string{domain.RoleUser, domain.RoleAdmin}},
		"banned": {ID: 3, Status: domain.UserStatusBanned, Roles: []string{domain.RoleUser}},
	}
	whoami := func(c *gin.Context) {
		id := 0
		if a := security.ActorFrom(c.Request.Context()); a != nil {
			id = int(a.ID)
		}
		c.String(http.StatusOK, strconv.Itoa(id))
	}

	r := gin.New()
	r.Use(Authenticate(resolver))
	r.GET("/public", whoami)
	r.GET("/private", RequireActor(), whoami)
	r.GET("/admin", RequireRole(domain.RoleAdmin), whoami)
	return r
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthenticate(t *testing.T) {
	r := setupAuthRouter()

	tests := []struct {
		name   string
		path   string
		header map[string]string
		status int
		body   string
	}{
		{"anonymous public", "/public", nil, http.StatusOK, "0"},
		{"authenticated public", "/public", bearer("user"), http.StatusOK, "1"},
		{"lowercase scheme", "/public", map[string]string{"Authorization": "bearer user"}, http.StatusOK, "1"},
		{"basic scheme ignored", "/public", map[string]string{"Authorization": "Basic dXNlcg=="}, http.StatusOK, "0"},
		{"invalid token", "/public", bearer("forged"), http.StatusUnauthorized, ""},
		{"resolver failure", "/public", bearer("broken"), http.StatusInternalServerError, ""},
		{"anonymous private", "/private", nil, http.StatusUnauthorized, ""},
		{"authenticated private", "/private", bearer("user"), http.StatusOK, "1"},
		{"banned private", "/private", bearer("banned"), http.StatusForbidden, ""},
		{"user on admin route", "/admin", bearer("user"), http.StatusForbidden, ""},
		{"admin on admin route", "/admin", bearer("admin"), http.StatusOK, "2"},
		{"anonymous admin route", "/admin", nil, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.path, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
