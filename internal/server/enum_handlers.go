package server

import (
	"nourish/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetEnums handles GET /api/enums
// @Summary Allowed values for enumerated fields
// @Tags enums
// @Produce json
// @Success 200 {object} models.Envelope
// @Router /enums [get]
func (s *Server) GetEnums(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "Enums fetched successfully", fiber.Map{
		"post": fiber.Map{
			"type":         models.PostTypes,
			"aspect_ratio": models.AspectRatios,
		},
		"user": fiber.Map{
			"roles": models.Roles,
		},
		"meal": fiber.Map{
			"meal_type":       models.MealTypes,
			"dietary_options": models.DietaryOptions,
			"meal_prep":       models.MealPrepOptions,
			"macros":          models.Nutrients,
			"macro_units":     models.NutrientUnits,
			"serving_unit":    models.ServingUnits,
			"time_to_make":    models.TimeToMakeOptions,
		},
		"tier": fiber.Map{
			"currency": models.Currencies,
			"goal":     models.TierGoals,
			"levels":   []int{models.MinTierLevel, models.MaxTierLevel},
		},
	})
}
