package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/services"
)

// IdentityResolver turns bearer tokens into identities.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (services.Principal, error)
	ResolveIdentityOptional(ctx context.Context, token string) services.Actor
}

type AuthMiddleware struct {
	identity IdentityResolver
}

func NewAuthMiddleware(identity IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

const ctxActorKey = "auth.actor"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireAuth rejects the request unless it carries a valid token for an
// existing user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.identity.ResolveIdentity(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ctxActorKey, services.Authenticated{Principal: p})
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when there is a valid one and
// lets the request through as a guest otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxActorKey, m.identity.ResolveIdentityOptional(c.Request.Context(), bearerToken(c)))
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			abortWithError(c, apperror.NewUnauthenticatedError("Not authorized to access this route", nil))
			return
		}
		if err := services.RequireRole(p, role); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ActorFromContext returns Guest when no auth middleware ran.
func ActorFromContext(c *gin.Context) services.Actor {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return services.Guest{}
	}
	actor, ok := v.(services.Actor)
	if !ok {
		return services.Guest{}
	}
	return actor
}

func PrincipalFromContext(c *gin.Context) (services.Principal, bool) {
	return services.PrincipalOf(ActorFromContext(c))
}

// UserIDFromContext returns the hex id of the authenticated caller.
func UserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := PrincipalFromContext(c)
	if !ok {
		return "", false
	}
	return p.ID.Hex(), true
}

func abortWithError(c *gin.Context, err error) {
	status, _, msg := apperror.MapToHTTPStatus(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
