package service

import (
	"context"
	"log/slog"

	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/visibility"
)

// GraphService owns follow and subscription edges and the followers_count
// kept next to them.
type GraphService struct {
	graphRepo repository.GraphRepository
	userRepo  repository.UserRepository
	tierRepo  repository.TierRepository
}

func NewGraphService(
	graphRepo repository.GraphRepository,
	userRepo repository.UserRepository,
	tierRepo repository.TierRepository,
) *GraphService {
	return &GraphService{
		graphRepo: graphRepo,
		userRepo:  userRepo,
		tierRepo:  tierRepo,
	}
}

// Follow adds the follower→target edge. followers_count moves only when the
// edge was new, so repeating the call changes nothing.
func (s *GraphService) Follow(ctx context.Context, followerID, targetID uint) (*models.User, error) {
	if followerID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	inserted, err := s.graphRepo.InsertFollow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.adjustFollowers(ctx, targetID, 1)
	}
	return s.WithEdges(ctx, followerID)
}

// Unfollow removes the edge if present.
func (s *GraphService) Unfollow(ctx context.Context, followerID, targetID uint) (*models.User, error) {
	if followerID == targetID {
		return nil, models.NewValidationError("You cannot unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	deleted, err := s.graphRepo.DeleteFollow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if deleted {
		s.adjustFollowers(ctx, targetID, -1)
	}
	return s.WithEdges(ctx, followerID)
}

func (s *GraphService) adjustFollowers(ctx context.Context, userID uint, delta int) {
	if err := s.graphRepo.AdjustFollowersCount(ctx, userID, delta); err != nil {
		observability.CounterUpdateFailures.WithLabelValues(observability.CounterFollowers).Inc()
		observability.GlobalLogger.ErrorContext(ctx, "failed to update followers count",
			slog.Uint64("user_id", uint64(userID)),
			slog.Int("delta", delta),
			slog.String("error", err.Error()),
		)
	}
}

// Subscribe checks the tier exists before writing the edge.
func (s *GraphService) Subscribe(ctx context.Context, userID, tierID uint) (*models.User, error) {
	if _, err := s.tierRepo.GetByID(ctx, tierID); err != nil {
		return nil, err
	}
	if _, err := s.graphRepo.InsertSubscription(ctx, userID, tierID); err != nil {
		return nil, err
	}
	return s.WithEdges(ctx, userID)
}

func (s *GraphService) Unsubscribe(ctx context.Context, userID, tierID uint) (*models.User, error) {
	if _, err := s.graphRepo.DeleteSubscription(ctx, userID, tierID); err != nil {
		return nil, err
	}
	return s.WithEdges(ctx, userID)
}

// WithEdges loads userID with Following and Subscribed populated.
func (s *GraphService) WithEdges(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.graphRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.graphRepo.SubscribedTierIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := *user
	out.Following = following
	out.Subscribed = subscribed
	return &out, nil
}

// ResolveViewer builds the viewer for an authenticated user. Lookups that
// fail leave the viewer with no tiers and no authoring role, so gated content
// stays locked.
func (s *GraphService) ResolveViewer(ctx context.Context, userID uint) visibility.Viewer {
	if userID == 0 {
		return visibility.Anonymous()
	}

	role := models.RoleConsumer
	user, err := s.userRepo.GetByID(ctx, userID)
	switch {
	case err == nil:
		role = user.Role
	case models.ErrorCode(err) == models.CodeNotFound:
		return visibility.Anonymous()
	default:
		observability.GlobalLogger.WarnContext(ctx, "viewer lookup failed, resolving with consumer role",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}

	tiers, err := s.graphRepo.SubscribedTierIDs(ctx, userID)
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "subscriptions unavailable, viewer resolved without tiers",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
		tiers = nil
	}
	return visibility.Identified(userID, role, tiers)
}
