package service

import (
	"context"
	"strings"

	"nourish/internal/models"
	"nourish/internal/repository"
	"nourish/internal/validation"
	"nourish/internal/visibility"

	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// MealInput is the payload for creating a meal.
type MealInput struct {
	Title          string              `json:"title" validate:"required,max=200"`
	Description    string              `json:"description" validate:"required"`
	Media          []string            `json:"media" validate:"max=20"`
	Steps          []models.MealStep   `json:"steps" validate:"dive"`
	MealType       string              `json:"meal_type" validate:"required,meal_type"`
	DietaryOptions []string            `json:"dietary_options" validate:"dive,dietary_option"`
	MealPrep       string              `json:"meal_prep" validate:"required,meal_prep"`
	Ingredients    []models.Ingredient `json:"ingredients" validate:"dive"`
	ServingSize    float64             `json:"serving_size" validate:"gt=0"`
	ServingUnit    string              `json:"serving_unit" validate:"omitempty,serving_unit"`
	Notes          []string            `json:"notes"`
	Macros         []models.Macro      `json:"macros" validate:"dive"`
	TimeToMake     string              `json:"time_to_make" validate:"required,time_to_make"`
	KCal           float64             `json:"kcal" validate:"gte=0"`
	Fats           float64             `json:"fats" validate:"gte=0"`
	Carbs          float64             `json:"carbs" validate:"gte=0"`
	Protein        float64             `json:"protein" validate:"gte=0"`
}

type MealService struct {
	mealRepo repository.MealRepository
}

func NewMealService(mealRepo repository.MealRepository) *MealService {
	return &MealService{mealRepo: mealRepo}
}

func (s *MealService) CreateMeal(ctx context.Context, actor visibility.Viewer, in MealInput) (*models.Meal, error) {
	if !visibility.CanAuthor(actor) {
		return nil, models.NewForbiddenError("Only creators and specialists can create meals")
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	for _, m := range in.Macros {
		if !lo.Contains(models.Nutrients, m.Name) {
			return nil, models.NewValidationError("Unknown nutrient " + m.Name)
		}
		if !lo.Contains(models.NutrientUnits, m.Unit) {
			return nil, models.NewValidationError("Unknown nutrient unit " + m.Unit)
		}
	}

	meal := &models.Meal{
		CreatorID:      actor.UserID,
		Title:          in.Title,
		Description:    in.Description,
		Media:          stringList(in.Media),
		Steps:          datatypes.JSONSlice[models.MealStep](lo.Ternary(in.Steps == nil, []models.MealStep{}, in.Steps)),
		MealType:       in.MealType,
		DietaryOptions: stringList(lo.Uniq(in.DietaryOptions)),
		MealPrep:       in.MealPrep,
		Ingredients:    datatypes.JSONSlice[models.Ingredient](lo.Ternary(in.Ingredients == nil, []models.Ingredient{}, in.Ingredients)),
		ServingSize:    in.ServingSize,
		ServingUnit:    in.ServingUnit,
		Notes:          stringList(in.Notes),
		Macros:         datatypes.JSONSlice[models.Macro](lo.Ternary(in.Macros == nil, []models.Macro{}, in.Macros)),
		TimeToMake:     in.TimeToMake,
		KCal:           in.KCal,
		Fats:           in.Fats,
		Carbs:          in.Carbs,
		Protein:        in.Protein,
	}
	if err := s.mealRepo.Create(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// GetMeal returns the full recipe. Only its creator may read it directly;
// everyone else sees meals through post projections.
func (s *MealService) GetMeal(ctx context.Context, actor visibility.Viewer, id uint) (*models.Meal, error) {
	if actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	meal, err := s.mealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.CanMutate(actor, meal.CreatorID) {
		return nil, models.NewNotFoundError("Meal", id)
	}
	return meal, nil
}

// ListMeals lists the actor's own meals, newest first.
func (s *MealService) ListMeals(ctx context.Context, actor visibility.Viewer, limit, skip int) ([]models.Meal, error) {
	if actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	limit, skip = normalizePage(limit, skip)
	return s.mealRepo.ListByCreator(ctx, actor.UserID, limit, skip)
}
