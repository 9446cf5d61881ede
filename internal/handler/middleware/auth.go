package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"tablebook/internal/domain/user"
	"tablebook/internal/pkg/cookie"
	"tablebook/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey       = "user_id"
	ctxRestaurantIDKey = "restaurant_id"
	ctxUserRoleKey     = "user_role"
)

var roleHierarchy = map[user.Role]int{
	user.RoleStaff:   1,
	user.RoleManager: 2,
	user.RoleAdmin:   3,
}

type AuthMiddleware struct {
	jwtService *jwt.Service
	logger     *slog.Logger
}

func NewAuthMiddleware(jwtService *jwt.Service, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, logger: logger}
}

// RequireAuth authenticates via the access-token cookie or a Bearer header
// and stashes the staff identity plus their restaurant (the tenant) on the
// request context. Every handler below reads the tenant from here, never
// from the request body.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetAccessToken(c)
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(authHeader[len("Bearer "):])
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		if claims.TokenType != "access" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRestaurantIDKey, claims.RestaurantID)
		c.Set(ctxUserRoleKey, user.Role(claims.Role))
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			// must run after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}
		if !hasMinimumRole(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasMinimumRole(userRole, minRole user.Role) bool {
	userLevel, userExists := roleHierarchy[userRole]
	minLevel, minExists := roleHierarchy[minRole]
	return userExists && minExists && userLevel >= minLevel
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetRestaurantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxRestaurantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(ctxUserRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}

// SetIdentity is a test helper for handler tests that bypass RequireAuth.
func SetIdentity(c *gin.Context, userID, restaurantID uuid.UUID, role user.Role) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxRestaurantIDKey, restaurantID)
	c.Set(ctxUserRoleKey, role)
}
