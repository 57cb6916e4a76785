package server

import (
	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postRequest is the create/update body. List fields accept a string or an array.
type postRequest struct {
	TierID            *uint          `json:"tier_id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Type              string         `json:"type"`
	MealID            *uint          `json:"meal_id"`
	Media             FlexList       `json:"media" swaggertype:"array,string"`
	Documents         FlexList       `json:"documents" swaggertype:"array,string"`
	AspectRatio       string         `json:"aspect_ratio"`
	Ingredients       FlexList       `json:"ingredients" swaggertype:"array,string"`
	StepByStep        FlexList       `json:"step_by_step" swaggertype:"array,string"`
	NutritionalFacts  map[string]any `json:"nutritional_facts"`
	DietaryOptions    FlexList       `json:"dietary_options" swaggertype:"array,string"`
	PublishingOptions string         `json:"publishing_options"`
	AllowComments     *bool          `json:"allow_comments"`
	TimeToMake        string         `json:"time_to_make"`
	Calories          string         `json:"calories"`
	ServingSize       string         `json:"serving_size"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		TierID:            r.TierID,
		Title:             r.Title,
		Description:       r.Description,
		Type:              r.Type,
		MealID:            r.MealID,
		Media:             r.Media.Strings(),
		Documents:         r.Documents.Strings(),
		AspectRatio:       r.AspectRatio,
		Ingredients:       r.Ingredients.Strings(),
		StepByStep:        r.StepByStep.Strings(),
		NutritionalFacts:  r.NutritionalFacts,
		DietaryOptions:    r.DietaryOptions.Strings(),
		PublishingOptions: r.PublishingOptions,
		AllowComments:     r.AllowComments,
		TimeToMake:        r.TimeToMake,
		Calories:          r.Calories,
		ServingSize:       r.ServingSize,
	}
}

// GetFeed handles GET /api/posts/feed
// @Summary Home feed
// @Description Newest free posts followed by newest gated posts; gated posts are redacted unless the viewer holds the tier
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (default 25)"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{posts=[]service.FeedItem}}
// @Router /posts/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	items, err := s.feedService.GetFeed(c.UserContext(), s.viewer(c), page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Feed fetched successfully", fiber.Map{"posts": items})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope{data=object{post=visibility.RedactedPost}}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), s.viewer(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post fetched successfully", fiber.Map{"post": post})
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post"
// @Success 201 {object} models.Envelope{data=object{post=models.Post}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), s.viewer(c), req.input())
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Post created successfully", fiber.Map{"post": post})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "Post"
// @Success 200 {object} models.Envelope{data=object{post=visibility.RedactedPost}}
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), s.viewer(c), id, req.input())
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post updated successfully", fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), s.viewer(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post deleted successfully", nil)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.UserContext(), actorID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post liked successfully", nil)
}

// UnlikePost handles POST /api/posts/:id/unlike
// @Summary Unlike post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope
// @Router /posts/{id}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.UserContext(), actorID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post unliked successfully", nil)
}

// GetLikedPosts handles GET /api/posts/liked-posts
// @Summary Liked posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{posts=[]visibility.RedactedPost}}
// @Router /posts/liked-posts [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	posts, err := s.postService.LikedPosts(c.UserContext(), s.viewer(c), page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Liked posts fetched successfully", fiber.Map{"posts": posts})
}
