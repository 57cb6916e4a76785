package service

import (
	"context"
	"log/slog"

	"nourish/internal/observability"
	"nourish/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ReconcileReport lists the rows whose counters were rewritten.
type ReconcileReport struct {
	FollowersRepaired []uint `json:"followers_repaired"`
	RepliesRepaired   []uint `json:"replies_repaired"`
}

// ReconcileService recomputes denormalized counters from their edge tables.
type ReconcileService struct {
	graphRepo   repository.GraphRepository
	commentRepo repository.CommentRepository
}

func NewReconcileService(graphRepo repository.GraphRepository, commentRepo repository.CommentRepository) *ReconcileService {
	return &ReconcileService{graphRepo: graphRepo, commentRepo: commentRepo}
}

// Run sweeps followers_count then reply_count. Both sweeps run even if the
// first fails; the first error is returned.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	span, ctx := observability.NewSpan(ctx, "ReconcileService.Run")
	defer span.End()
	op := observability.LogAsyncOperationStart(ctx, "reconcile_counters")

	report := &ReconcileReport{FollowersRepaired: []uint{}, RepliesRepaired: []uint{}}
	var firstErr error

	followers, err := s.graphRepo.ReconcileFollowersCounts(ctx)
	if err != nil {
		firstErr = err
		observability.GlobalLogger.ErrorContext(ctx, "followers_count sweep failed", slog.String("error", err.Error()))
	} else {
		report.FollowersRepaired = followers
		observability.ReconcileRepairs.WithLabelValues(observability.CounterFollowers).Add(float64(len(followers)))
	}

	replies, err := s.commentRepo.ReconcileReplyCounts(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		observability.GlobalLogger.ErrorContext(ctx, "reply_count sweep failed", slog.String("error", err.Error()))
	} else {
		report.RepliesRepaired = replies
		observability.ReconcileRepairs.WithLabelValues(observability.CounterReplies).Add(float64(len(replies)))
	}

	span.AddAttributes(
		attribute.Int("reconcile.followers_repaired", len(report.FollowersRepaired)),
		attribute.Int("reconcile.replies_repaired", len(report.RepliesRepaired)),
	)
	if firstErr != nil {
		span.SetError(firstErr)
		observability.ReconcileRuns.WithLabelValues("error").Inc()
		op.Fail(ctx, firstErr)
		return report, firstErr
	}

	observability.ReconcileRuns.WithLabelValues("ok").Inc()
	op.End(ctx,
		slog.Int("followers_repaired", len(report.FollowersRepaired)),
		slog.Int("replies_repaired", len(report.RepliesRepaired)),
	)
	return report, nil
}
