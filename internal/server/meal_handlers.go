package server

import (
	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMeal handles POST /api/meals
// @Summary Create meal
// @Tags meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MealInput true "Meal"
// @Success 201 {object} models.Envelope{data=object{meal=models.Meal}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /meals [post]
func (s *Server) CreateMeal(c *fiber.Ctx) error {
	var req service.MealInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	meal, err := s.mealService.CreateMeal(c.UserContext(), s.viewer(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Meal created successfully", fiber.Map{"meal": meal})
}

// GetMyMeals handles GET /api/meals
// @Summary Own meals
// @Tags meals
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{meals=[]models.Meal}}
// @Router /meals [get]
func (s *Server) GetMyMeals(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	meals, err := s.mealService.ListMeals(c.UserContext(), s.viewer(c), page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Meals fetched successfully", fiber.Map{"meals": meals})
}

// GetMeal handles GET /api/meals/:id
// @Summary Get own meal
// @Tags meals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meal ID"
// @Success 200 {object} models.Envelope{data=object{meal=models.Meal}}
// @Failure 404 {object} models.ErrorResponse
// @Router /meals/{id} [get]
func (s *Server) GetMeal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	meal, err := s.mealService.GetMeal(c.UserContext(), s.viewer(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Meal fetched successfully", fiber.Map{"meal": meal})
}
