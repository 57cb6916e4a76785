package visibility

import (
	"errors"
	"fmt"

	"nourish/internal/models"

	"gorm.io/datatypes"
)

// ErrMealUnresolved is returned alongside a projection whose meal reference
// could not be loaded. The projection is still usable.
var ErrMealUnresolved = errors.New("meal reference could not be resolved")

// RedactedPost is the viewer-specific projection of a post.
type RedactedPost struct {
	models.Post
	Locked bool `json:"locked"`
}

// Unlocked reports whether viewer may see the full representation of post.
// Role is deliberately absent from this decision.
func Unlocked(post *models.Post, viewer Viewer) bool {
	if post.TierID == nil {
		return true
	}
	return viewer.Subscribed(*post.TierID)
}

// Redact returns the projection of post that viewer is allowed to see. It
// never modifies post or its meal. A non-nil error means the meal reference
// of a Meal post was missing; the returned projection has a nil meal.
func Redact(post *models.Post, viewer Viewer) (RedactedPost, error) {
	out := RedactedPost{Post: *post}

	var err error
	if post.Type == models.PostTypeMeal && post.Meal == nil {
		err = fmt.Errorf("post %d: %w", post.ID, ErrMealUnresolved)
	}

	if Unlocked(post, viewer) {
		return out, err
	}

	out.Locked = true
	out.Ingredients = datatypes.JSONSlice[string]{}
	out.StepByStep = datatypes.JSONSlice[string]{}
	out.Documents = datatypes.JSONSlice[string]{}
	out.NutritionalFacts = datatypes.JSONMap{}
	if post.Meal != nil {
		out.Meal = teaser(post.Meal)
	}
	return out, err
}

// teaser copies meal keeping its presentation fields and dropping the recipe.
func teaser(meal *models.Meal) *models.Meal {
	m := *meal
	m.Media = append(datatypes.JSONSlice[string]{}, meal.Media...)
	m.Ingredients = datatypes.JSONSlice[models.Ingredient]{}
	m.Steps = datatypes.JSONSlice[models.MealStep]{}
	return &m
}
