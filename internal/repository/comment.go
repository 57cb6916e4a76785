package repository

import (
	"context"

	"nourish/internal/models"
	"nourish/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	AdjustReplyCount(ctx context.Context, id uint, delta int) error
	ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	ListReplies(ctx context.Context, postID, parentID uint, limit, offset int) ([]*models.Comment, error)
	UpdateMessage(ctx context.Context, id uint, message string) error
	Delete(ctx context.Context, id uint) (bool, error)
	ReconcileReplyCounts(ctx context.Context) ([]uint, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("insert", "comments")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	comment.ReplyCount = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return translateError(err, "Comment", comment.PostID)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &comment, nil
}

// AdjustReplyCount applies delta to reply_count in one statement. Decrements
// never take the counter below zero.
func (r *commentRepository) AdjustReplyCount(ctx context.Context, id uint, delta int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id)
	if delta < 0 {
		db = db.Where("reply_count >= ?", -delta)
	}
	if err := db.UpdateColumn("reply_count", gorm.Expr("reply_count + ?", delta)).Error; err != nil {
		return translateError(err, "Comment", id)
	}
	return nil
}

// ListTopLevel returns comments that reply to nothing, oldest first.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return r.list(ctx, limit, offset, "post_id = ? AND replied_to_id IS NULL", postID)
}

// ListReplies returns the direct replies to parentID, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, postID, parentID uint, limit, offset int) ([]*models.Comment, error) {
	return r.list(ctx, limit, offset, "post_id = ? AND replied_to_id = ?", postID, parentID)
}

func (r *commentRepository) list(ctx context.Context, limit, offset int, query string, args ...interface{}) ([]*models.Comment, error) {
	span, ctx := observability.StoreSpan(ctx, "comments", "list")
	defer span.End()
	defer observability.TrackQuery("list", "comments")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	comments := []*models.Comment{}
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where(query, args...).
		Order("date ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		span.SetError(err)
		return nil, translateError(err, "Comment", args[0])
	}
	return comments, nil
}

func (r *commentRepository) UpdateMessage(ctx context.Context, id uint, message string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("message", message)
	if res.Error != nil {
		return translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// Delete soft-deletes the comment and reports whether a live row was removed.
func (r *commentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return false, translateError(res.Error, "Comment", id)
	}
	return res.RowsAffected == 1, nil
}

const reconcileRepliesSQL = `UPDATE comments
SET reply_count = (SELECT COUNT(*) FROM comments r WHERE r.replied_to_id = comments.id AND r.deleted_at IS NULL)
WHERE reply_count <> (SELECT COUNT(*) FROM comments r WHERE r.replied_to_id = comments.id AND r.deleted_at IS NULL)
RETURNING id`

// ReconcileReplyCounts rewrites every drifted reply_count from the live
// replies and returns the ids of repaired comments.
func (r *commentRepository) ReconcileReplyCounts(ctx context.Context) ([]uint, error) {
	span, ctx := observability.StoreSpan(ctx, "comments", "reconcile")
	defer span.End()
	defer observability.TrackQuery("reconcile", "comments")()

	ids := []uint{}
	if err := r.db.WithContext(ctx).Raw(reconcileRepliesSQL).Scan(&ids).Error; err != nil {
		span.SetError(err)
		return nil, translateError(err, "Comment", "reconcile")
	}
	span.AddAttributes(attribute.Int("reconcile.repaired", len(ids)))
	return ids, nil
}
