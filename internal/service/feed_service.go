package service

import (
	"context"
	"errors"
	"log/slog"

	"nourish/internal/featureflags"
	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/visibility"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// FeedItem is a post as the feed shows it to one viewer, annotated with its
// author.
type FeedItem struct {
	Post               visibility.RedactedPost `json:"post"`
	Locked             bool                    `json:"locked"`
	UserHandle         string                  `json:"user_handle"`
	UserProfilePicture string                  `json:"user_profile_picture"`
	UserRole           models.Role             `json:"user_role"`
}

type FeedService struct {
	postRepo repository.PostRepository
	flags    *featureflags.Manager
}

func NewFeedService(postRepo repository.PostRepository, flags *featureflags.Manager) *FeedService {
	return &FeedService{postRepo: postRepo, flags: flags}
}

// SplitBudget divides n between the free and gated streams. The free stream
// gets the larger half.
func SplitBudget(n int) (free, gated int) {
	free = (n + 1) / 2
	return free, n - free
}

// GetFeed returns one page of the mixed feed: the free slice followed by the
// gated slice, each newest first. Any stream failure fails the page.
func (s *FeedService) GetFeed(ctx context.Context, viewer visibility.Viewer, limit, skip int) ([]FeedItem, error) {
	limit, skip = normalizePage(limit, skip)
	freeLimit, gatedLimit := SplitBudget(limit)
	freeSkip, gatedSkip := SplitBudget(skip)

	span, ctx := observability.NewSpan(ctx, "FeedService.GetFeed")
	defer span.End()
	span.AddAttributes(
		attribute.Int("feed.limit", limit),
		attribute.Int("feed.skip", skip),
		attribute.Bool("viewer.anonymous", viewer.IsAnonymous()),
	)

	var free, gated []*models.Post
	fetchFree := func(ctx context.Context) (err error) {
		free, err = s.postRepo.ListStream(ctx, false, freeLimit, freeSkip, viewer.UserID)
		return err
	}
	fetchGated := func(ctx context.Context) (err error) {
		gated, err = s.postRepo.ListStream(ctx, true, gatedLimit, gatedSkip, viewer.UserID)
		return err
	}

	if s.flags.Enabled(featureflags.ParallelFeed, viewer.UserID) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return fetchFree(gctx) })
		g.Go(func() error { return fetchGated(gctx) })
		if err := g.Wait(); err != nil {
			span.SetError(err)
			return nil, err
		}
	} else {
		if err := fetchFree(ctx); err != nil {
			span.SetError(err)
			return nil, err
		}
		if err := fetchGated(ctx); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	posts := append(free, gated...)
	items := lo.FilterMap(posts, func(p *models.Post, _ int) (FeedItem, bool) {
		if p.Creator == nil {
			return FeedItem{}, false
		}
		return s.project(ctx, p, viewer), true
	})

	locked := lo.CountBy(items, func(it FeedItem) bool { return it.Locked })
	observability.RecordFeedItems(locked, len(items)-locked)
	span.AddAttributes(attribute.Int("feed.items", len(items)), attribute.Int("feed.locked", locked))
	return items, nil
}

func (s *FeedService) project(ctx context.Context, p *models.Post, viewer visibility.Viewer) FeedItem {
	redacted, err := visibility.Redact(p, viewer)
	if err != nil && errors.Is(err, visibility.ErrMealUnresolved) {
		observability.GlobalLogger.WarnContext(ctx, "feed post references a missing meal",
			slog.Uint64("post_id", uint64(p.ID)),
			slog.String("error", err.Error()),
		)
	}
	redacted.Creator = publicProfile(p.Creator)
	return FeedItem{
		Post:               redacted,
		Locked:             redacted.Locked,
		UserHandle:         p.Creator.Handle,
		UserProfilePicture: p.Creator.ProfilePicture,
		UserRole:           p.Creator.Role,
	}
}
