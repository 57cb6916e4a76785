package server

import (
	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTier handles POST /api/tiers
// @Summary Create tier
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TierInput true "Tier"
// @Success 201 {object} models.Envelope{data=object{tier=models.Tier}}
// @Failure 403 {object} models.ErrorResponse
// @Router /tiers [post]
func (s *Server) CreateTier(c *fiber.Ctx) error {
	var req service.TierInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	tier, err := s.tierService.CreateTier(c.UserContext(), s.viewer(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Tier created successfully", fiber.Map{"tier": tier})
}

// GetTier handles GET /api/tiers/:id
// @Summary Get tier
// @Tags tiers
// @Produce json
// @Param id path int true "Tier ID"
// @Success 200 {object} models.Envelope{data=object{tier=models.Tier}}
// @Failure 404 {object} models.ErrorResponse
// @Router /tiers/{id} [get]
func (s *Server) GetTier(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tier, err := s.tierService.GetTier(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tier fetched successfully", fiber.Map{"tier": tier})
}

// UpdateTier handles PUT /api/tiers/:id
// @Summary Update tier
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tier ID"
// @Param request body service.TierInput true "Tier"
// @Success 200 {object} models.Envelope{data=object{tier=models.Tier}}
// @Router /tiers/{id} [put]
func (s *Server) UpdateTier(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.TierInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	tier, err := s.tierService.UpdateTier(c.UserContext(), s.viewer(c), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tier updated successfully", fiber.Map{"tier": tier})
}

// DeleteTier handles DELETE /api/tiers/:id
// @Summary Delete tier
// @Description Refused with 409 while posts are gated behind the tier
// @Tags tiers
// @Security BearerAuth
// @Param id path int true "Tier ID"
// @Success 200 {object} models.Envelope
// @Failure 409 {object} models.ErrorResponse
// @Router /tiers/{id} [delete]
func (s *Server) DeleteTier(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.tierService.DeleteTier(c.UserContext(), s.viewer(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tier deleted successfully", nil)
}

// GetOwnTiers handles GET /api/tiers/own
// @Summary Own tiers with subscriber counts
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{tiers=[]models.Tier}}
// @Router /tiers/own [get]
func (s *Server) GetOwnTiers(c *fiber.Ctx) error {
	tiers, err := s.tierService.GetOwnTiers(c.UserContext(), s.viewer(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tiers fetched successfully", fiber.Map{"tiers": tiers})
}

// GetSubscribedTiers handles GET /api/tiers/subscribed
// @Summary Tiers the current user subscribes to
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{tiers=[]models.Tier}}
// @Router /tiers/subscribed [get]
func (s *Server) GetSubscribedTiers(c *fiber.Ctx) error {
	tiers, err := s.tierService.GetSubscribedTiers(c.UserContext(), actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tiers fetched successfully", fiber.Map{"tiers": tiers})
}

// GetUserTiers handles GET /api/users/:id/tiers
// @Summary A creator's public tier catalogue
// @Tags tiers
// @Produce json
// @Param id path int true "Creator ID"
// @Success 200 {object} models.Envelope{data=object{tiers=[]models.Tier}}
// @Router /users/{id}/tiers [get]
func (s *Server) GetUserTiers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tiers, err := s.tierService.GetTiersByCreator(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Tiers fetched successfully", fiber.Map{"tiers": tiers})
}

// SubscribeTier handles POST /api/tiers/:id/subscribe
// @Summary Subscribe to a tier
// @Description Idempotent; the tier is validated before anything is written
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tier ID"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Failure 404 {object} models.ErrorResponse
// @Router /tiers/{id}/subscribe [post]
func (s *Server) SubscribeTier(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.graphService.Subscribe(c.UserContext(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Subscribed successfully", fiber.Map{"user": user})
}

// UnsubscribeTier handles POST /api/tiers/:id/unsubscribe
// @Summary Unsubscribe from a tier
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tier ID"
// @Success 200 {object} models.Envelope{data=object{user=models.User}}
// @Router /tiers/{id}/unsubscribe [post]
func (s *Server) UnsubscribeTier(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.graphService.Unsubscribe(c.UserContext(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Unsubscribed successfully", fiber.Map{"user": user})
}
