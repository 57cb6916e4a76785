package repository

import (
	"context"

	"nourish/internal/cache"
	"nourish/internal/models"
	"nourish/internal/observability"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GraphRepository stores follow and tier subscription edges. Edge inserts
// and deletes report whether the edge set actually changed, which is what
// gates the denormalized followers_count update.
type GraphRepository interface {
	InsertFollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	AdjustFollowersCount(ctx context.Context, userID uint, delta int) error
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	InsertSubscription(ctx context.Context, userID, tierID uint) (bool, error)
	DeleteSubscription(ctx context.Context, userID, tierID uint) (bool, error)
	SubscribedTierIDs(ctx context.Context, userID uint) ([]uint, error)
	ReconcileFollowersCounts(ctx context.Context) ([]uint, error)
}

type graphRepository struct {
	db *gorm.DB
}

// NewGraphRepository returns a new GraphRepository implementation.
func NewGraphRepository(db *gorm.DB) GraphRepository {
	return &graphRepository{db: db}
}

func (r *graphRepository) InsertFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	defer observability.TrackQuery("insert", "follows")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if res.Error != nil {
		return false, translateError(res.Error, "Follow", followeeID)
	}
	return res.RowsAffected == 1, nil
}

func (r *graphRepository) DeleteFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	defer observability.TrackQuery("delete", "follows")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, translateError(res.Error, "Follow", followeeID)
	}
	return res.RowsAffected == 1, nil
}

// AdjustFollowersCount applies delta to the stored counter in one statement.
// Decrements never take the counter below zero.
func (r *graphRepository) AdjustFollowersCount(ctx context.Context, userID uint, delta int) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(qctx).Model(&models.User{}).Where("id = ?", userID)
	if delta < 0 {
		db = db.Where("followers_count >= ?", -delta)
	}
	if err := db.UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta)).Error; err != nil {
		return translateError(err, "User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

func (r *graphRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids := []uint{}
	err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("id ASC").
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "Follow", userID)
	}
	return ids, nil
}

func (r *graphRepository) InsertSubscription(ctx context.Context, userID, tierID uint) (bool, error) {
	defer observability.TrackQuery("insert", "tier_subscriptions")()
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	edge := models.TierSubscription{UserID: userID, TierID: tierID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if res.Error != nil {
		return false, translateError(res.Error, "Subscription", tierID)
	}
	return res.RowsAffected == 1, nil
}

func (r *graphRepository) DeleteSubscription(ctx context.Context, userID, tierID uint) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND tier_id = ?", userID, tierID).
		Delete(&models.TierSubscription{})
	if res.Error != nil {
		return false, translateError(res.Error, "Subscription", tierID)
	}
	return res.RowsAffected == 1, nil
}

func (r *graphRepository) SubscribedTierIDs(ctx context.Context, userID uint) ([]uint, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids := []uint{}
	err := readDB(r.db).WithContext(ctx).Model(&models.TierSubscription{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("tier_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "Subscription", userID)
	}
	return ids, nil
}

const reconcileFollowersSQL = `UPDATE users
SET followers_count = (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id)
WHERE followers_count <> (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id)
RETURNING id`

// ReconcileFollowersCounts rewrites every drifted followers_count from the
// follow edges and returns the ids of repaired users. It is bounded by ctx
// only, since a sweep may legitimately outlast the per-access timeout.
func (r *graphRepository) ReconcileFollowersCounts(ctx context.Context) ([]uint, error) {
	span, ctx := observability.StoreSpan(ctx, "users", "reconcile")
	defer span.End()
	defer observability.TrackQuery("reconcile", "users")()

	ids := []uint{}
	if err := r.db.WithContext(ctx).Raw(reconcileFollowersSQL).Scan(&ids).Error; err != nil {
		span.SetError(err)
		return nil, translateError(err, "User", "reconcile")
	}
	span.AddAttributes(attribute.Int("reconcile.repaired", len(ids)))
	cache.Invalidate(ctx, lo.Map(ids, func(id uint, _ int) string { return cache.UserKey(id) })...)
	return ids, nil
}
