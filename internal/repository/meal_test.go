package repository

import (
	"context"
	"testing"

	"nourish/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealRepository_RoundTripsJSONColumns(t *testing.T) {
	db := newTestDB(t)
	repo := NewMealRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db, models.RoleCreator)
	meal := &models.Meal{
		CreatorID:   creator.ID,
		Title:       "Shakshuka",
		Description: "Eggs in spiced tomato sauce",
		Media:       []string{"https://cdn.example.com/a.webp"},
		Steps: []models.MealStep{
			{Title: "Simmer", Description: "Cook the sauce", Media: []string{}},
			{Title: "Poach", Description: "Crack the eggs in", Media: []string{}},
		},
		MealType:       "Breakfast",
		DietaryOptions: []string{"Vegetarian"},
		MealPrep:       "One-Pan / One-Bowl",
		Ingredients:    []models.Ingredient{{Name: "eggs"}, {Name: "tomatoes"}},
		ServingSize:    2,
		ServingUnit:    "unit",
		Macros:         []models.Macro{{Name: "Fiber", Quantity: 4, Unit: "g"}},
		TimeToMake:     "Under 30 minutes",
		KCal:           420,
		Fats:           20,
		Carbs:          30,
		Protein:        25,
	}
	require.NoError(t, repo.Create(ctx, meal))

	got, err := repo.GetByID(ctx, meal.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "Poach", got.Steps[1].Title)
	assert.Equal(t, "tomatoes", got.Ingredients[1].Name)
	assert.InDelta(t, 420.0, got.KCal, 0.001)

	list, err := repo.ListByCreator(ctx, creator.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByID(ctx, 404)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
