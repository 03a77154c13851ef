package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/pkg/auth"
	"github.com/jwalitptl/clinic-crm/pkg/httputil"
)

// ContextClaims is the gin context key holding the verified token claims.
const ContextClaims = "claims"

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate verifies the session token on every request and stores the
// claims in the context. The token comes from the session cookie, falling
// back to a bearer Authorization header.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.validator.ValidateToken(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
