package server

import (
	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Message   string `json:"message"`
	RepliedTo *uint  `json:"replied_to"`
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description Top-level comment, or a reply when replied_to names a comment on the same post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.Envelope{data=object{comment=models.Comment}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID:    postID,
		AuthorID:  actorID(c),
		Message:   req.Message,
		RepliedTo: req.RepliedTo,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Comment created successfully", fiber.Map{"comment": comment})
}

// GetComments handles GET /api/posts/:id/comments
// @Summary Top-level comments
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param limit query int false "Page size"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{comments=[]service.ThreadItem}}
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPaginationLimit)

	comments, err := s.commentService.GetTopLevelComments(c.UserContext(), postID, page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comments fetched successfully", fiber.Map{"comments": comments})
}

// GetReplies handles GET /api/posts/:id/comments/:commentId/replies
// @Summary Replies to a comment
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param limit query int false "Page size"
// @Param skip query int false "Items to skip"
// @Success 200 {object} models.Envelope{data=object{comments=[]service.ThreadItem}}
// @Router /posts/{id}/comments/{commentId}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPaginationLimit)

	replies, err := s.commentService.GetReplies(c.UserContext(), postID, commentID, page.Limit, page.Skip)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Replies fetched successfully", fiber.Map{"comments": replies})
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId
// @Summary Edit comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body object{message=string} true "New message"
// @Success 200 {object} models.Envelope{data=object{comment=models.Comment}}
// @Router /posts/{id}/comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), s.viewer(c), postID, commentID, req.Message)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comment updated successfully", fiber.Map{"comment": comment})
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Envelope
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), s.viewer(c), postID, commentID); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comment deleted successfully", nil)
}
