package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// ActorResolver turns a bearer token into the actor it authenticates.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (*security.Actor, error)
}

// Authenticate attaches the actor of a valid bearer token to the request
// context. Anonymous requests pass through; a present but invalid token is
// rejected with 401.
func Authenticate(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), token)
		if err != nil {
			if !domain.IsUnauthorized(err) && !domain.IsNotFound(err) {
				pkg.AbortWithError(c, err)
				return
			}
			pkg.AbortWithError(c, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", nil))
			return
		}

		ctx := security.WithActor(c.Request.Context(), actor)
		ctx = logger.WithContextAttrs(ctx, slog.Uint64("actor_id", uint64(actor.ID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireActor rejects anonymous requests with 401 and banned actors with 403.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := security.RequireActor(c.Request.Context()); err != nil {
			pkg.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole rejects actors lacking role with 403.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := security.RequireActor(c.Request.Context())
		if err != nil {
			pkg.AbortWithError(c, err)
			return
		}
		if !actor.HasRole(role) {
			pkg.AbortWithError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
