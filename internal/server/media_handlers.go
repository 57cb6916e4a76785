package server

import (
	"io"

	"nourish/internal/models"
	"nourish/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media/upload
// @Summary Upload an image
// @Description Crops to the nearest allowed aspect ratio, re-encodes as JPEG and stores it
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image (jpeg, png, gif, webp)"
// @Success 201 {object} models.Envelope{data=service.MediaAsset}
// @Failure 400 {object} models.ErrorResponse
// @Router /media/upload [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	asset, err := s.mediaService.Upload(c.UserContext(), service.UploadMediaInput{
		UserID:      actorID(c),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "File uploaded successfully", asset)
}
