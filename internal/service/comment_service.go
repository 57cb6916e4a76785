package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/visibility"

	"github.com/samber/lo"
)

// MaxCommentLength is the longest accepted comment message, in characters.
const MaxCommentLength = 10000

// ThreadItem is a comment annotated with its author for display.
type ThreadItem struct {
	Comment            *models.Comment `json:"comment"`
	UserHandle         string          `json:"user_handle"`
	UserProfilePicture string          `json:"user_profile_picture"`
	UserRole           models.Role     `json:"user_role"`
}

type CreateCommentInput struct {
	PostID    uint
	AuthorID  uint
	Message   string
	RepliedTo *uint
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func normalizeMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", models.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(message) > MaxCommentLength {
		return "", models.NewValidationError("Message too long (max 10000 characters)")
	}
	return message, nil
}

// CreateComment stores a comment and, for a reply, bumps the parent's
// reply_count. A failed bump does not fail the call; the reconciliation
// sweep repairs the counter.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	message, err := normalizeMessage(in.Message)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetSummary(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.AllowComments {
		return nil, models.NewValidationError("Comments are disabled for this post")
	}

	if in.RepliedTo != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.RepliedTo)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewInvalidReferenceError("Replied-to comment belongs to another post")
		}
	}

	comment := &models.Comment{
		PostID:      in.PostID,
		UserID:      in.AuthorID,
		RepliedToID: in.RepliedTo,
		Message:     message,
		Date:        time.Now().UTC(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if in.RepliedTo != nil {
		s.adjustReplyCount(ctx, *in.RepliedTo, 1)
	}
	return comment, nil
}

func (s *CommentService) adjustReplyCount(ctx context.Context, parentID uint, delta int) {
	if err := s.commentRepo.AdjustReplyCount(ctx, parentID, delta); err != nil {
		observability.CounterUpdateFailures.WithLabelValues(observability.CounterReplies).Inc()
		observability.GlobalLogger.ErrorContext(ctx, "failed to update reply count",
			slog.Uint64("comment_id", uint64(parentID)),
			slog.Int("delta", delta),
			slog.String("error", err.Error()),
		)
	}
}

// GetTopLevelComments lists the comments of a post that reply to nothing,
// oldest first.
func (s *CommentService) GetTopLevelComments(ctx context.Context, postID uint, limit, skip int) ([]ThreadItem, error) {
	limit, skip = normalizePage(limit, skip)
	if _, err := s.postRepo.GetSummary(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, postID, limit, skip)
	if err != nil {
		return nil, err
	}
	return annotate(comments), nil
}

// GetReplies lists the direct replies to commentID, oldest first.
func (s *CommentService) GetReplies(ctx context.Context, postID, commentID uint, limit, skip int) ([]ThreadItem, error) {
	limit, skip = normalizePage(limit, skip)
	if _, err := s.postRepo.GetSummary(ctx, postID); err != nil {
		return nil, err
	}

	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != postID {
		return nil, models.NewInvalidReferenceError("Comment belongs to another post")
	}

	comments, err := s.commentRepo.ListReplies(ctx, postID, commentID, limit, skip)
	if err != nil {
		return nil, err
	}
	return annotate(comments), nil
}

// annotate joins each comment with its author. Comments whose author no
// longer resolves are dropped.
func annotate(comments []*models.Comment) []ThreadItem {
	return lo.FilterMap(comments, func(c *models.Comment, _ int) (ThreadItem, bool) {
		if c.User == nil {
			return ThreadItem{}, false
		}
		c.User = publicProfile(c.User)
		return ThreadItem{
			Comment:            c,
			UserHandle:         c.User.Handle,
			UserProfilePicture: c.User.ProfilePicture,
			UserRole:           c.User.Role,
		}, true
	})
}

// ownedComment loads a comment of postID that actor may change.
func (s *CommentService) ownedComment(ctx context.Context, actor visibility.Viewer, postID, commentID uint) (*models.Comment, error) {
	if actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if !visibility.CanMutate(actor, comment.UserID) {
		return nil, models.NewForbiddenError("Only the author can change this comment")
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, actor visibility.Viewer, postID, commentID uint, message string) (*models.Comment, error) {
	message, err := normalizeMessage(message)
	if err != nil {
		return nil, err
	}
	comment, err := s.ownedComment(ctx, actor, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateMessage(ctx, commentID, message); err != nil {
		return nil, err
	}
	comment.Message = message
	return comment, nil
}

// DeleteComment soft-deletes a comment. The parent's reply_count drops only
// when a live row was actually removed.
func (s *CommentService) DeleteComment(ctx context.Context, actor visibility.Viewer, postID, commentID uint) error {
	comment, err := s.ownedComment(ctx, actor, postID, commentID)
	if err != nil {
		return err
	}
	deleted, err := s.commentRepo.Delete(ctx, commentID)
	if err != nil {
		return err
	}
	if deleted && comment.RepliedToID != nil {
		s.adjustReplyCount(ctx, *comment.RepliedToID, -1)
	}
	return nil
}
