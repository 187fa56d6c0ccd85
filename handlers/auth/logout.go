package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/utils/middleware"
	"github.com/sahilchouksey/taskboard-api/utils/response"
)

// Logout handles DELETE /api/auth/logout. Every token of the user is revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	jti, _ := middleware.GetTokenJTI(c)

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims, ok := middleware.GetClaims(c); ok && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.authService.Logout(c.UserContext(), user, jti, expiresAt); err != nil {
		return response.InternalServerError(c, "Could not log out.")
	}

	return response.Success(c, "User logged out successfully.", nil)
}
