package server

import (
	"nourish/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return models.Respond(c, fiber.StatusOK, "Feature flags", fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return models.Respond(c, fiber.StatusOK, "Feature flags", fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(actorID(c)),
	})
}

// RunReconcile handles POST /api/admin/reconcile
// @Summary Recompute drifted counters now
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=service.ReconcileReport}
// @Router /admin/reconcile [post]
func (s *Server) RunReconcile(c *fiber.Ctx) error {
	report, err := s.reconcileService.Run(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Counters reconciled", report)
}
