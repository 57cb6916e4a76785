package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/validation"
	"nourish/internal/visibility"

	"gorm.io/datatypes"
)

// PostInput is the writable part of a post. List fields arrive already
// normalised to ordered string lists.
type PostInput struct {
	TierID            *uint          `json:"tier_id"`
	Title             string         `json:"title" validate:"required,max=300"`
	Description       string         `json:"description" validate:"max=50000"`
	Type              string         `json:"type" validate:"omitempty,post_type"`
	MealID            *uint          `json:"meal_id"`
	Media             []string       `json:"media" validate:"max=20"`
	Documents         []string       `json:"documents" validate:"max=20"`
	AspectRatio       string         `json:"aspect_ratio" validate:"omitempty,aspect_ratio"`
	Ingredients       []string       `json:"ingredients"`
	StepByStep        []string       `json:"step_by_step"`
	NutritionalFacts  map[string]any `json:"nutritional_facts"`
	DietaryOptions    []string       `json:"dietary_options" validate:"dive,dietary_option"`
	PublishingOptions string         `json:"publishing_options"`
	AllowComments     *bool          `json:"allow_comments"`
	TimeToMake        string         `json:"time_to_make" validate:"omitempty,time_to_make"`
	Calories          string         `json:"calories"`
	ServingSize       string         `json:"serving_size"`
}

func (in *PostInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Type == "" {
		in.Type = string(models.PostTypeNormal)
	}
	if in.AspectRatio == "" {
		in.AspectRatio = models.AspectSquare
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	isMeal := models.PostType(in.Type) == models.PostTypeMeal
	if isMeal && in.MealID == nil {
		return models.NewValidationError("meal_id is required for Meal posts")
	}
	if !isMeal && in.MealID != nil {
		return models.NewValidationError("meal_id is only allowed on Meal posts")
	}
	return nil
}

func (in PostInput) apply(p *models.Post) {
	p.TierID = in.TierID
	p.Title = in.Title
	p.Description = in.Description
	p.Type = models.PostType(in.Type)
	p.MealID = in.MealID
	p.Media = stringList(in.Media)
	p.Documents = stringList(in.Documents)
	p.AspectRatio = in.AspectRatio
	p.Ingredients = stringList(in.Ingredients)
	p.StepByStep = stringList(in.StepByStep)
	p.NutritionalFacts = datatypes.JSONMap(in.NutritionalFacts)
	if p.NutritionalFacts == nil {
		p.NutritionalFacts = datatypes.JSONMap{}
	}
	p.DietaryOptions = stringList(in.DietaryOptions)
	p.PublishingOptions = in.PublishingOptions
	p.AllowComments = in.AllowComments == nil || *in.AllowComments
	p.TimeToMake = in.TimeToMake
	p.Calories = in.Calories
	p.ServingSize = in.ServingSize
}

func stringList(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}

type PostService struct {
	postRepo repository.PostRepository
	tierRepo repository.TierRepository
	mealRepo repository.MealRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	tierRepo repository.TierRepository,
	mealRepo repository.MealRepository,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		tierRepo: tierRepo,
		mealRepo: mealRepo,
	}
}

// GetPost returns the projection of a post the viewer may see.
func (s *PostService) GetPost(ctx context.Context, viewer visibility.Viewer, id uint) (*visibility.RedactedPost, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewer.UserID)
	if err != nil {
		return nil, err
	}
	out := s.redact(ctx, post, viewer)
	return &out, nil
}

func (s *PostService) redact(ctx context.Context, post *models.Post, viewer visibility.Viewer) visibility.RedactedPost {
	out, err := visibility.Redact(post, viewer)
	if err != nil && errors.Is(err, visibility.ErrMealUnresolved) {
		observability.GlobalLogger.WarnContext(ctx, "post references a missing meal",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}
	out.Creator = publicProfile(post.Creator)
	return out
}

// checkReferences verifies the tier and the meal both belong to the author.
func (s *PostService) checkReferences(ctx context.Context, authorID uint, in PostInput) error {
	if in.TierID != nil {
		tier, err := s.tierRepo.GetByID(ctx, *in.TierID)
		if err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				return models.NewInvalidReferenceError("tier_id does not name an existing tier")
			}
			return err
		}
		if tier.CreatorID != authorID {
			return models.NewForbiddenError("Posts can only be gated behind your own tiers")
		}
	}
	if in.MealID != nil {
		meal, err := s.mealRepo.GetByID(ctx, *in.MealID)
		if err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				return models.NewInvalidReferenceError("meal_id does not name an existing meal")
			}
			return err
		}
		if meal.CreatorID != authorID {
			return models.NewForbiddenError("Posts can only reference your own meals")
		}
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, actor visibility.Viewer, in PostInput) (*models.Post, error) {
	if !visibility.CanAuthor(actor) {
		return nil, models.NewForbiddenError("Only creators and specialists can publish posts")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor.UserID, in); err != nil {
		return nil, err
	}

	post := &models.Post{CreatorID: actor.UserID, Date: time.Now().UTC()}
	in.apply(post)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ownedPost(ctx context.Context, actor visibility.Viewer, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.CanMutate(actor, post.CreatorID) {
		return nil, models.NewForbiddenError("Only the author can change this post")
	}
	return post, nil
}

// UpdatePost rewrites the mutable fields. The publication date is kept.
func (s *PostService) UpdatePost(ctx context.Context, actor visibility.Viewer, id uint, in PostInput) (*visibility.RedactedPost, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	post, err := s.ownedPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor.UserID, in); err != nil {
		return nil, err
	}
	in.apply(post)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, actor, id)
}

func (s *PostService) DeletePost(ctx context.Context, actor visibility.Viewer, id uint) error {
	if _, err := s.ownedPost(ctx, actor, id); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, id)
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetSummary(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, userID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetSummary(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Unlike(ctx, userID, postID)
}

// LikedPosts lists the viewer's liked posts, redacted for the viewer.
func (s *PostService) LikedPosts(ctx context.Context, viewer visibility.Viewer, limit, skip int) ([]visibility.RedactedPost, error) {
	if viewer.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	limit, skip = normalizePage(limit, skip)
	posts, err := s.postRepo.ListLiked(ctx, viewer.UserID, limit, skip)
	if err != nil {
		return nil, err
	}
	out := make([]visibility.RedactedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.redact(ctx, p, viewer))
	}
	return out, nil
}
