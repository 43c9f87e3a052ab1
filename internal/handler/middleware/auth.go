package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/handler/httperr"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	accessTokenCookie = "access_token"
	ctxUserKey        = "user"
	ctxClaimsKey      = "jwt_claims"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Principal, error)
}

// UserResolver loads the user record behind an authenticated principal.
type UserResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
	users  UserResolver
}

func NewAuthMiddleware(tokens TokenValidator, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.Abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		principal, err := m.tokens.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}
		c.Set(ctxClaimsKey, map[string]any{
			"user_id": principal.UserID.String(),
			"role":    principal.Role.String(),
		})

		u, err := m.users.FindByID(c.Request.Context(), principal.UserID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				httperr.AbortWithError(c, http.StatusUnauthorized, err, "Unknown user", nil)
				return
			}
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
			return
		}

		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireRoleAtLeast must run after RequireAuth. The stored user's role wins
// over the token's claim.
func (m *AuthMiddleware) RequireRoleAtLeast(minRole user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			httperr.Abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !u.Role().AtLeast(minRole) {
			httperr.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	token, _ := c.Cookie(accessTokenCookie)
	return token
}

func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(ctxUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}
