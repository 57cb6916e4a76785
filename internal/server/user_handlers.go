package server

import (
	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/users
// @Summary Create account
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} models.Envelope{data=object{user=models.User}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "User created successfully", fiber.Map{"user": user})
}

// SearchUsers handles GET /api/users?q=
// @Summary Search users
// @Tags users
// @Produce json
// @Param q query string true "Handle or name fragment"
// @Param limit query int false "Page size"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{users=[]models.User}}
// @Router /users [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	users, err := s.userService.Search(c.UserContext(), c.Query("q"), page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Users fetched successfully", fiber.Map{"users": users})
}

// GetMyProfile handles GET /api/users/profile
// @Summary Current user's profile with follow and subscription edges
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Router /users/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.graphService.WithEdges(c.UserContext(), actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile fetched successfully", fiber.Map{"user": user})
}

// GetUserProfile handles GET /api/users/:id
// @Summary Public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User fetched successfully", fiber.Map{"user": user})
}

// UpdateMyProfile handles PUT /api/users
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Router /users [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), actorID(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile updated successfully", fiber.Map{"user": user})
}

// ResetPassword handles POST /api/users/reset-password
// @Summary Change password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body object{current_password=string,new_password=string} true "Passwords"
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.ErrorResponse
// @Router /users/reset-password [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	if err := s.userService.ResetPassword(c.UserContext(), actorID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Password updated successfully", nil)
}

// ChangeProfilePicture handles POST /api/users/change-profilepic
// @Summary Set profile picture from an uploaded media URL
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{profile_picture=string} true "Media URL"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Router /users/change-profilepic [post]
func (s *Server) ChangeProfilePicture(c *fiber.Ctx) error {
	var req struct {
		ProfilePicture string `json:"profile_picture"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.ChangeProfilePicture(c.UserContext(), actorID(c), req.ProfilePicture)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile picture updated successfully", fiber.Map{"user": user})
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Description Idempotent; the target's follower count changes only when the edge is new
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.graphService.Follow(c.UserContext(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User followed successfully", fiber.Map{"user": user})
}

// UnfollowUser handles POST /api/users/:id/unfollow
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Router /users/{id}/unfollow [post]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.graphService.Unfollow(c.UserContext(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User unfollowed successfully", fiber.Map{"user": user})
}
