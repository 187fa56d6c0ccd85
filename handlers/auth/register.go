package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/handlers/resource"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils/middleware"
	"github.com/sahilchouksey/taskboard-api/utils/response"
	"github.com/sahilchouksey/taskboard-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService          *services.AuthService
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(authService *services.AuthService, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max_bytes=72"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User      resource.UserResource `json:"user"`
	AuthToken string                `json:"auth_token"`
	ExpiresIn int                   `json:"expires_in"` // in seconds
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.SanitizeString(req.Email)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	result, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			return response.ValidationError(c, map[string]string{
				"password": "The password field must be between 8 characters and 72 bytes.",
			})
		}
		if errors.Is(err, services.ErrEmailTaken) {
			return response.ErrorWithData(c, fiber.StatusConflict, "The given data was invalid.", fiber.Map{
				"email": "The email has already been taken.",
			})
		}
		return response.InternalServerError(c, "Could not register.")
	}

	return response.Created(c, "User registered successfully.", newAuthResponse(result))
}

func newAuthResponse(result *services.AuthResult) AuthResponse {
	return AuthResponse{
		User:      resource.NewUser(result.User),
		AuthToken: result.Token.Token,
		ExpiresIn: int(time.Until(result.Token.ExpiresAt).Seconds()),
	}
}
