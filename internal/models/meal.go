package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Meal enum values.
var (
	MealTypes = []string{"Breakfast", "Lunch", "Dinner", "Snack"}

	DietaryOptions = []string{
		"Vegan", "Vegetarian", "Pescatarian", "Paleo", "Keto", "Kosher",
		"Low Sugar", "No added Sugar", "Low Carb", "High Protein", "Dairy Free",
		"Gluten Free", "Nut Free", "Soy Free", "Corn Free", "Egg Free",
	}

	MealPrepOptions = []string{
		"No-Bake", "One-Pan / One-Bowl", "One-Sheet Pan", "Few Ingredients",
		"Party Size", "Easy to make",
	}

	TimeToMakeOptions = []string{
		"Under 15 minutes", "Under 30 minutes", "Under 45 minutes",
		"Under 1 hour", "Over 1 hour",
	}

	ServingUnits = []string{"ml", "g", "cups", "tablespoons", "pinch", "unit"}

	Nutrients = []string{
		"KJ", "Fiber", "Sugar", "Sat. Fat", "TransFat", "Sodium", "Pottasium",
		"VitC", "VitA", "VitE", "VitB12", "Iron", "Calcium",
	}

	NutrientUnits = []string{"g", "mg", "mcg", "IU", "ng"}
)

// MealStep is one preparation step with its own media.
type MealStep struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Media       []string `json:"media" validate:"dive,url"`
}

// Ingredient is a named meal ingredient.
type Ingredient struct {
	Name string `json:"name" validate:"required"`
}

// Macro is a nutrient quantity entry.
type Macro struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Unit     string  `json:"unit" validate:"required"`
}

// Meal is standalone recipe content a post can reference.
type Meal struct {
	ID             uint                            `gorm:"primaryKey" json:"id"`
	CreatorID      uint                            `gorm:"not null;index" json:"creator_id"`
	Title          string                          `gorm:"not null" json:"title"`
	Description    string                          `gorm:"type:text;not null" json:"description"`
	Media          datatypes.JSONSlice[string]     `json:"media"`
	Steps          datatypes.JSONSlice[MealStep]   `json:"steps"`
	MealType       string                          `gorm:"type:varchar(20);not null" json:"meal_type"`
	DietaryOptions datatypes.JSONSlice[string]     `json:"dietary_options"`
	MealPrep       string                          `gorm:"type:varchar(40);not null" json:"meal_prep"`
	Ingredients    datatypes.JSONSlice[Ingredient] `json:"ingredients"`
	ServingSize    float64                         `gorm:"not null" json:"serving_size"`
	ServingUnit    string                          `gorm:"type:varchar(20)" json:"serving_unit,omitempty"`
	Notes          datatypes.JSONSlice[string]     `json:"notes"`
	Macros         datatypes.JSONSlice[Macro]      `json:"macros"`
	RatingSum      int                             `gorm:"not null;default:0" json:"rating_sum"`
	RatingCount    int                             `gorm:"not null;default:0" json:"rating_count"`
	TimeToMake     string                          `gorm:"type:varchar(20);not null" json:"time_to_make"`
	KCal           float64                         `gorm:"column:kcal;not null" json:"kcal"`
	Fats           float64                         `gorm:"not null" json:"fats"`
	Carbs          float64                         `gorm:"not null" json:"carbs"`
	Protein        float64                         `gorm:"not null" json:"protein"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt                  `gorm:"index" json:"-"`
}
