// Package bootstrap wires the process-wide runtime: database, cache and the
// optional development fixtures.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nourish/internal/cache"
	"nourish/internal/config"
	"nourish/internal/database"
	"nourish/internal/middleware"
	"nourish/internal/models"
	"nourish/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPlan, when set, seeds demo data from this YAML plan after connecting.
	SeedPlan string
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// A nil Redis client means Redis is unreachable and optional features are off.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedPlan != "" {
		plan, err := seed.LoadPlan(opts.SeedPlan)
		if err != nil {
			return nil, nil, err
		}
		sum, err := seed.NewSeeder(db, plan, 0).Run(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "demo data seeded",
			slog.Int("users", sum.Creators+sum.Consumers),
			slog.Int("posts", sum.Posts),
		)
	}

	return db, r, nil
}

func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	handle := strings.TrimSpace(cfg.DevRootHandle)
	if handle == "" {
		handle = "nourish_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@nourish.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.First(&root, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				ID:        1,
				Handle:    handle,
				Email:     email,
				FirstName: "Root",
				LastName:  "Admin",
				Password:  string(hashedPassword),
				Role:      models.RoleAdmin,
				Verified:  true,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"role": models.RoleAdmin}
			if cfg.DevRootForceCredentials {
				updates["handle"] = handle
				updates["email"] = email
				updates["password"] = string(hashedPassword)
			}
			if err := tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Ensure users ID sequence is not behind explicit ID insertion.
		// This is PostgreSQL-specific.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development root admin ensured",
		slog.Uint64("user_id", 1),
		slog.String("email", email),
	)
	return nil
}
