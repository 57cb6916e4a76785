// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"nourish/internal/middleware"
	"nourish/internal/models"
	"nourish/internal/visibility"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/skip query parameters.
type Pagination struct {
	Limit int
	Skip  int
}

const (
	defaultPaginationLimit = 25
	maxPaginationLimit     = 100
)

// parsePagination extracts limit and skip query parameters with the given
// default limit. "offset" is accepted as an alias of "skip".
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	skip := c.QueryInt("skip", c.QueryInt("offset", 0))
	if skip < 0 {
		skip = 0
	}

	return Pagination{
		Limit: limit,
		Skip:  skip,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID", "creatorId" -> "creator ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// bindJSON parses the request body into dst, writing a 400 on failure.
// Callers should check: if err != nil { return nil }
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondServiceError maps a service error onto its HTTP status. Internal
// and transient failures are logged with the request context.
func respondServiceError(c *fiber.Ctx, err error) error {
	code := models.ErrorCode(err)
	if code == models.CodeInternal || code == models.CodeTransient {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}
	if code == models.CodeInternal && !isAppError(err) {
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, models.StatusForCode(code), err)
}

func isAppError(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr)
}

// actorID returns the authenticated user id. Routes using it sit behind
// Auth.Required, so a missing id is a wiring bug and reads as anonymous.
func actorID(c *fiber.Ctx) uint {
	uid, _ := middleware.UserID(c)
	return uid
}

// viewer resolves the requester's role and subscriptions. Anonymous requests
// and unknown users resolve to the anonymous viewer.
func (s *Server) viewer(c *fiber.Ctx) visibility.Viewer {
	uid, ok := middleware.UserID(c)
	if !ok {
		return visibility.Anonymous()
	}
	return s.graphService.ResolveViewer(c.UserContext(), uid)
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}
