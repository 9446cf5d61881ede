//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"tablebook/internal/domain/user"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID, restaurantID uuid.UUID, role user.Role) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, h.cfg.AccessDuration, h.cfg.RefreshDuration)
	token, err := service.GenerateAccessToken(userID, restaurantID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID, restaurantID uuid.UUID, role user.Role) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, 1*time.Millisecond, h.cfg.RefreshDuration)
	token, err := service.GenerateAccessToken(userID, restaurantID, role)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
