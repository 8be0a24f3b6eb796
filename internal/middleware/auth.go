package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/isa-florenville/focustime-api/internal/models"
	"github.com/isa-florenville/focustime-api/internal/service"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/response"
)

const identityKey = "identity"

// Authenticate validates the bearer token and resolves the caller's
// directory identity into the request context.
func Authenticate(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header"))
			c.Abort()
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		identity, err := auth.ResolveIdentity(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireStaff gates a route on the directory-derived staff role. Tokens
// carry no role claim; the directory entry decides.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if identity.Role != models.RoleStaff {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "staff role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom extracts the resolved identity set by Authenticate.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
