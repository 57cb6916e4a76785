package repository

import (
	"context"

	"nourish/internal/models"

	"gorm.io/gorm"
)

// MealRepository defines persistence operations for meals.
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) error
	GetByID(ctx context.Context, id uint) (*models.Meal, error)
	ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Meal, error)
}

type mealRepository struct {
	db *gorm.DB
}

// NewMealRepository returns a new MealRepository implementation.
func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func (r *mealRepository) Create(ctx context.Context, meal *models.Meal) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(meal).Error; err != nil {
		return translateError(err, "Meal", meal.Title)
	}
	return nil
}

func (r *mealRepository) GetByID(ctx context.Context, id uint) (*models.Meal, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var meal models.Meal
	if err := readDB(r.db).WithContext(ctx).First(&meal, id).Error; err != nil {
		return nil, translateError(err, "Meal", id)
	}
	return &meal, nil
}

func (r *mealRepository) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Meal, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	meals := []models.Meal{}
	err := readDB(r.db).WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&meals).Error
	if err != nil {
		return nil, translateError(err, "Meal", creatorID)
	}
	return meals, nil
}
