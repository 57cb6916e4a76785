package server

import (
	"log/slog"

	"nourish/internal/middleware"
	"nourish/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} models.Envelope{data=service.Session}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	session, err := s.userService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Login successful", session)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revokes the presented token until it would have expired
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.auth.Revoke(c.UserContext(), middleware.TokenClaims(c)); err != nil {
		// The token still expires on its own; a revocation miss is not fatal.
		middleware.Logger.WarnContext(c.UserContext(), "token revocation failed",
			slog.String("error", err.Error()),
		)
	}
	return models.Respond(c, fiber.StatusOK, "Logged out successfully", nil)
}
