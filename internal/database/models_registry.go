package database

import (
	"context"
	"fmt"

	"nourish/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Tier{},
		&models.TierSubscription{},
		&models.Meal{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	}
}

// feedIndexes back the two feed streams, which filter on tier presence and
// order by date.
var feedIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_posts_free_feed ON posts (date DESC, id DESC) WHERE tier_id IS NULL AND deleted_at IS NULL",
	"CREATE INDEX IF NOT EXISTS idx_posts_gated_feed ON posts (date DESC, id DESC) WHERE tier_id IS NOT NULL AND deleted_at IS NULL",
	// A meal is referenced by at most one live post.
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_meal_once ON posts (meal_id) WHERE meal_id IS NOT NULL AND deleted_at IS NULL",
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range feedIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create post index: %w", err)
		}
	}
	return nil
}
