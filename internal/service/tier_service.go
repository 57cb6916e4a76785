package service

import (
	"context"
	"strings"

	"nourish/internal/models"
	"nourish/internal/repository"
	"nourish/internal/validation"
	"nourish/internal/visibility"
)

// TierInput is the writable part of a tier.
type TierInput struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=5000"`
	Price       float64 `json:"price" validate:"gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,currency"`
	Goal        string  `json:"goal" validate:"tier_goal"`
	Level       int     `json:"level" validate:"omitempty,gte=1,lte=4"`
	CoverPhoto  string  `json:"cover_photo" validate:"omitempty,url"`
}

func (in *TierInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Currency == "" {
		in.Currency = string(models.CurrencyEUR)
	}
	if in.Level == 0 {
		in.Level = models.MinTierLevel
	}
	return validation.Struct(in)
}

func (in TierInput) apply(t *models.Tier) {
	t.Title = in.Title
	t.Description = in.Description
	t.Price = in.Price
	t.Currency = models.Currency(in.Currency)
	t.Goal = in.Goal
	t.Level = in.Level
	t.CoverPhoto = in.CoverPhoto
}

type TierService struct {
	tierRepo  repository.TierRepository
	graphRepo repository.GraphRepository
}

func NewTierService(tierRepo repository.TierRepository, graphRepo repository.GraphRepository) *TierService {
	return &TierService{tierRepo: tierRepo, graphRepo: graphRepo}
}

func (s *TierService) CreateTier(ctx context.Context, actor visibility.Viewer, in TierInput) (*models.Tier, error) {
	if !visibility.CanAuthor(actor) {
		return nil, models.NewForbiddenError("Only creators and specialists can create tiers")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	tier := &models.Tier{CreatorID: actor.UserID}
	in.apply(tier)
	if err := s.tierRepo.Create(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}

// ownedTier loads a tier that actor may change.
func (s *TierService) ownedTier(ctx context.Context, actor visibility.Viewer, id uint) (*models.Tier, error) {
	tier, err := s.tierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.CanMutate(actor, tier.CreatorID) {
		return nil, models.NewForbiddenError("Only the owner can change this tier")
	}
	return tier, nil
}

func (s *TierService) UpdateTier(ctx context.Context, actor visibility.Viewer, id uint, in TierInput) (*models.Tier, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	tier, err := s.ownedTier(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.apply(tier)
	if err := s.tierRepo.Update(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}

// DeleteTier refuses while any post is gated behind the tier.
func (s *TierService) DeleteTier(ctx context.Context, actor visibility.Viewer, id uint) error {
	tier, err := s.ownedTier(ctx, actor, id)
	if err != nil {
		return err
	}
	refs, err := s.tierRepo.CountReferencingPosts(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return models.NewConflictError("Tier is still referenced by posts")
	}
	return s.tierRepo.Delete(ctx, tier)
}

func (s *TierService) GetTier(ctx context.Context, id uint) (*models.Tier, error) {
	return s.tierRepo.GetByID(ctx, id)
}

func (s *TierService) GetTiersByCreator(ctx context.Context, creatorID uint) ([]models.Tier, error) {
	return s.tierRepo.ListByCreator(ctx, creatorID)
}

// GetOwnTiers is the creator's own catalogue with subscriber counts.
func (s *TierService) GetOwnTiers(ctx context.Context, actor visibility.Viewer) ([]models.Tier, error) {
	if actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.tierRepo.ListByCreatorWithCounts(ctx, actor.UserID)
}

func (s *TierService) GetSubscribedTiers(ctx context.Context, userID uint) ([]models.Tier, error) {
	ids, err := s.graphRepo.SubscribedTierIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tierRepo.ListByIDs(ctx, ids)
}
