package repository

import (
	"context"

	"nourish/internal/models"
	"nourish/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	GetSummary(ctx context.Context, id uint) (*models.Post, error)
	ListStream(ctx context.Context, gated bool, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListLiked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return translatePostWrite(err, post.Title)
	}
	return nil
}

// GetByID loads a post with its creator, meal and derived counts.
func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := r.withDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("Creator").
		Preload("Meal").
		First(&post, id).Error
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

// GetSummary loads only the columns needed for ownership and comment checks.
func (r *postRepository) GetSummary(ctx context.Context, id uint) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := r.db.WithContext(ctx).
		Select("id", "creator_id", "tier_id", "allow_comments", "date").
		First(&post, id).Error
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

// ListStream returns one page of either the free stream (tier_id IS NULL) or
// the gated stream, newest first with id as tie-breaker.
func (r *postRepository) ListStream(ctx context.Context, gated bool, limit, offset int, viewerID uint) ([]*models.Post, error) {
	span, ctx := observability.StoreSpan(ctx, "posts", "list_stream")
	defer span.End()
	span.AddAttributes(attribute.Bool("feed.gated", gated), attribute.Int("feed.limit", limit))
	defer observability.TrackQuery("list_stream", "posts")()

	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := r.withDetails(readDB(r.db).WithContext(ctx), viewerID)
	if gated {
		db = db.Where("posts.tier_id IS NOT NULL")
	} else {
		db = db.Where("posts.tier_id IS NULL")
	}
	err := db.
		Preload("Creator").
		Preload("Meal").
		Order("posts.date DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		span.SetError(err)
		return nil, translateError(err, "Post", "feed")
	}
	return posts, nil
}

// ListLiked returns posts liked by userID, most recently liked first.
func (r *postRepository) ListLiked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	posts := []*models.Post{}
	err := r.withDetails(readDB(r.db).WithContext(ctx), userID).
		Joins("JOIN likes ON likes.post_id = posts.id AND likes.user_id = ?", userID).
		Preload("Creator").
		Preload("Meal").
		Order("likes.created_at DESC, likes.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", userID)
	}
	return posts, nil
}

// withDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

// Update writes the mutable post columns. date and creator_id are immutable.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("tier_id", "title", "description", "type", "meal_id", "media", "documents",
			"aspect_ratio", "ingredients", "step_by_step", "nutritional_facts",
			"dietary_options", "publishing_options", "allow_comments", "time_to_make",
			"calories", "serving_size").
		Updates(post).Error
	if err != nil {
		return translatePostWrite(err, post.ID)
	}
	return nil
}

// translatePostWrite reports a unique violation on posts as a meal already
// claimed by another post; meal_id is the only unique column on the table.
func translatePostWrite(err error, id interface{}) error {
	if isUniqueConstraintError(err) {
		return models.NewConflictError("meal_id is already used by another post")
	}
	return translateError(err, "Post", id)
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Like is idempotent: liking twice leaves one like.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	like := models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		return translateError(err, "Like", postID)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return translateError(err, "Like", postID)
	}
	return nil
}
