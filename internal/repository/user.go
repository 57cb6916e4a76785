// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"strings"

	"nourish/internal/cache"
	"nourish/internal/models"
	"nourish/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetCredentials(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Search(ctx context.Context, query string, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// profileColumns are the columns a profile update may touch. followers_count
// is owned by the graph store and never written here.
var profileColumns = []string{
	"first_name", "last_name", "handle", "bio", "profile_picture", "profession_proof",
}

// GetByID loads a user through the profile cache. The cached copy never
// carries the password hash; use GetCredentials for that.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", "users")()

	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		qctx, cancel := withTimeout(ctx)
		defer cancel()
		return translateError(readDB(r.db).WithContext(qctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByHandle returns (nil, nil) when the handle is free.
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return r.findOne(ctx, "handle = ?", strings.TrimSpace(handle))
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var users []models.User
	if err := r.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&users).Error; err != nil {
		return nil, translateError(err, "User", arg)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, "User", user.Email)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(qctx).Model(&models.User{ID: user.ID}).
		Select(profileColumns).
		Updates(user).Error
	if err != nil {
		return translateError(err, "User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(qctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translateError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// Search matches handle, first or last name case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("search", "users")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := readDB(r.db).WithContext(ctx)
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		like := "%" + q + "%"
		db = db.Where("LOWER(handle) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	users := []models.User{}
	if err := db.Order("followers_count DESC, id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, translateError(err, "User", query)
	}
	return users, nil
}
