package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/service"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

type localsKey string

const (
	userIDKey localsKey = "user_id"
	roleKey   localsKey = "user_role"
)

// Identity reads the caller identity supplied by the upstream session
// layer. The headers are trusted as-is.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return service.NewServiceError(constants.ErrCodeUnauthorized, service.ErrMissingIdentity)
		}

		role := strings.ToLower(strings.TrimSpace(c.Get(HeaderUserRole)))
		if role == "" {
			role = RoleUser
		}

		c.Locals(userIDKey, userID)
		c.Locals(roleKey, role)

		return c.Next()
	}
}

// RequireAdmin must run after Identity.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != RoleAdmin {
			return service.NewServiceError(constants.ErrCodeForbidden, service.ErrNotAdmin)
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(roleKey).(string)
	return role
}
