package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils/metrics"
	"github.com/sahilchouksey/taskboard-api/utils/response"
	"github.com/sahilchouksey/taskboard-api/utils/validation"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	req.Email = validation.SanitizeString(req.Email)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	ctx := c.UserContext()
	ip := c.IP()

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.IncrementLoginFailure()
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailedAttempt(ctx, ip)
			}
			return response.Unauthorized(c, "Invalid credentials.")
		}
		return response.InternalServerError(c, "Could not log in.")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip)
	}

	return response.Success(c, "User logged in successfully.", newAuthResponse(result))
}
