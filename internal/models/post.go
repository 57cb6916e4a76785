// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostType classifies what a post carries.
type PostType string

const (
	PostTypeNormal    PostType = "Normal"
	PostTypeMeal      PostType = "Meal"
	PostTypeWorkout   PostType = "Workout"
	PostTypeRecipe    PostType = "Recipe"
	PostTypeProgram   PostType = "Program"
	PostTypeBreakfast PostType = "Breakfast"
	PostTypeDinner    PostType = "Dinner"
	PostTypeSnack     PostType = "Snack"
)

// PostTypes lists every accepted post type.
var PostTypes = []PostType{
	PostTypeNormal, PostTypeMeal, PostTypeWorkout, PostTypeRecipe,
	PostTypeProgram, PostTypeBreakfast, PostTypeDinner, PostTypeSnack,
}

// Aspect ratios of the first media item.
const (
	AspectSquare    = "square"
	AspectLandscape = "landscape"
	AspectPortrait  = "portrait"
)

// AspectRatios lists every accepted aspect ratio.
var AspectRatios = []string{AspectSquare, AspectLandscape, AspectPortrait}

// Post is a piece of creator content. A nil TierID means the post is free.
type Post struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CreatorID   uint     `gorm:"not null;index" json:"creator_id"`
	Creator     *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	TierID      *uint    `gorm:"index" json:"tier_id"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Type        PostType `gorm:"type:varchar(20);not null;default:'Normal'" json:"type"`
	MealID      *uint    `gorm:"index" json:"meal_id,omitempty"`
	Meal        *Meal    `gorm:"foreignKey:MealID" json:"meal,omitempty"`
	// Date is set once at creation and never updated.
	Date              time.Time                   `gorm:"not null;index" json:"date"`
	Media             datatypes.JSONSlice[string] `json:"media"`
	Documents         datatypes.JSONSlice[string] `json:"documents"`
	AspectRatio       string                      `gorm:"type:varchar(12);not null;default:'square'" json:"aspect_ratio"`
	Ingredients       datatypes.JSONSlice[string] `json:"ingredients"`
	StepByStep        datatypes.JSONSlice[string] `json:"step_by_step"`
	NutritionalFacts  datatypes.JSONMap           `json:"nutritional_facts"`
	DietaryOptions    datatypes.JSONSlice[string] `json:"dietary_options"`
	PublishingOptions string                      `json:"publishing_options,omitempty"`
	AllowComments     bool                        `gorm:"not null" json:"allow_comments"`
	TimeToMake        string                      `json:"time_to_make,omitempty"`
	Calories          string                      `json:"calories,omitempty"`
	ServingSize       string                      `json:"serving_size,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Gated reports whether the post is behind a tier.
func (p *Post) Gated() bool {
	return p.TierID != nil
}
