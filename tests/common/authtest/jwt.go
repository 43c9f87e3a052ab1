//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the identity provider does.
type JWTHelper struct {
	service *jwt.Service
}

func NewJWTHelper(t *testing.T, cfg config.JWTConfig) *JWTHelper {
	t.Helper()
	duration, err := time.ParseDuration(cfg.Duration)
	require.NoError(t, err)
	return &JWTHelper{service: jwt.NewService(cfg.Secret, duration)}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.service.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.service.GenerateTokenAt(userID, role, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	return token
}

// TokenFor mints a token for an existing user record.
func (h *JWTHelper) TokenFor(t *testing.T, u *user.User) string {
	t.Helper()
	return h.GenerateToken(t, u.ID(), u.Role())
}
