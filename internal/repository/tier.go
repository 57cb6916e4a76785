package repository

import (
	"context"

	"nourish/internal/cache"
	"nourish/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TierRepository defines persistence operations for tiers.
type TierRepository interface {
	Create(ctx context.Context, tier *models.Tier) error
	GetByID(ctx context.Context, id uint) (*models.Tier, error)
	Update(ctx context.Context, tier *models.Tier) error
	Delete(ctx context.Context, tier *models.Tier) error
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Tier, error)
	ListByCreatorWithCounts(ctx context.Context, creatorID uint) ([]models.Tier, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Tier, error)
	CountReferencingPosts(ctx context.Context, tierID uint) (int64, error)
}

type tierRepository struct {
	db *gorm.DB
}

// NewTierRepository returns a new TierRepository implementation.
func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) Create(ctx context.Context, tier *models.Tier) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(qctx).Omit(clause.Associations).Create(tier).Error; err != nil {
		return translateError(err, "Tier", tier.Title)
	}
	cache.InvalidateCreatorTiers(ctx, tier.CreatorID)
	return nil
}

func (r *tierRepository) GetByID(ctx context.Context, id uint) (*models.Tier, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var tier models.Tier
	if err := readDB(r.db).WithContext(ctx).First(&tier, id).Error; err != nil {
		return nil, translateError(err, "Tier", id)
	}
	return &tier, nil
}

func (r *tierRepository) Update(ctx context.Context, tier *models.Tier) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(qctx).Model(&models.Tier{ID: tier.ID}).
		Select("title", "description", "price", "currency", "goal", "level", "cover_photo").
		Updates(tier).Error
	if err != nil {
		return translateError(err, "Tier", tier.ID)
	}
	cache.InvalidateCreatorTiers(ctx, tier.CreatorID)
	return nil
}

func (r *tierRepository) Delete(ctx context.Context, tier *models.Tier) error {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(qctx).Delete(&models.Tier{}, tier.ID).Error; err != nil {
		return translateError(err, "Tier", tier.ID)
	}
	cache.InvalidateCreatorTiers(ctx, tier.CreatorID)
	return nil
}

// ListByCreator is the public tier catalogue of a creator, cheapest level first.
func (r *tierRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Tier, error) {
	tiers := []models.Tier{}
	err := cache.Aside(ctx, cache.CreatorTiersKey(creatorID), &tiers, cache.CreatorTiersTTL, func() error {
		qctx, cancel := withTimeout(ctx)
		defer cancel()
		return translateError(readDB(r.db).WithContext(qctx).
			Where("creator_id = ?", creatorID).
			Order("level ASC, id ASC").
			Find(&tiers).Error, "Tier", creatorID)
	})
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

// ListByCreatorWithCounts is the owner's view, carrying live subscriber counts.
func (r *tierRepository) ListByCreatorWithCounts(ctx context.Context, creatorID uint) ([]models.Tier, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tiers := []models.Tier{}
	err := readDB(r.db).WithContext(ctx).
		Select("tiers.*, (SELECT COUNT(*) FROM tier_subscriptions WHERE tier_subscriptions.tier_id = tiers.id) AS subscriber_count").
		Where("creator_id = ?", creatorID).
		Order("level ASC, id ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, translateError(err, "Tier", creatorID)
	}
	return tiers, nil
}

func (r *tierRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Tier, error) {
	tiers := []models.Tier{}
	if len(ids) == 0 {
		return tiers, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := readDB(r.db).WithContext(ctx).
		Preload("Creator").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, translateError(err, "Tier", ids)
	}
	return tiers, nil
}

func (r *tierRepository) CountReferencingPosts(ctx context.Context, tierID uint) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("tier_id = ?", tierID).Count(&n).Error; err != nil {
		return 0, translateError(err, "Tier", tierID)
	}
	return n, nil
}
