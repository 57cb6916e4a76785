package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/storage"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaMaxUploadMB = 10
	MasterMaxSize           = 2048
	JPEGQuality             = 82
)

var allowedRatios = []struct {
	name  string
	ratio float64
}{
	{name: models.AspectLandscape, ratio: 1.91},
	{name: models.AspectSquare, ratio: 1.0},
	{name: models.AspectPortrait, ratio: 0.8},
}

type UploadMediaInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// MediaAsset describes a stored upload.
type MediaAsset struct {
	URL         string `json:"url"`
	AspectRatio string `json:"aspect_ratio"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// MediaService normalises uploaded images to one of the post aspect ratios
// and stores a JPEG master.
type MediaService struct {
	store              storage.BlobStore
	maxUploadSizeBytes int64
}

func NewMediaService(store storage.BlobStore, maxUploadMB int) *MediaService {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMediaMaxUploadMB
	}
	return &MediaService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

func (s *MediaService) Upload(ctx context.Context, in UploadMediaInput) (*MediaAsset, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceMimeType := decodedFormatToMime(format)
	if sourceMimeType == "" {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	b := decoded.Bounds()
	aspect, cropX, cropY, cropW, cropH := selectCropMode(b.Dx(), b.Dy())
	master := resizeToFit(cropToRect(decoded, b.Min.X+cropX, b.Min.Y+cropY, cropW, cropH), MasterMaxSize, MasterMaxSize)

	encoded, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	key := buildDeterministicImageHash(in.UserID, encoded) + "/master.jpg"
	url, err := s.store.Put(ctx, key, encoded)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.MediaUploads.WithLabelValues(sourceMimeType).Inc()
	observability.GlobalLogger.InfoContext(ctx, "media stored",
		slog.Uint64("user_id", uint64(in.UserID)),
		slog.String("key", key),
		slog.String("aspect_ratio", aspect),
	)

	mb := master.Bounds()
	return &MediaAsset{URL: url, AspectRatio: aspect, Width: mb.Dx(), Height: mb.Dy()}, nil
}

// AspectRatioFor names the allowed ratio closest to w:h.
func AspectRatioFor(w, h int) string {
	name, _, _, _, _ := selectCropMode(w, h)
	return name
}

func selectCropMode(w, h int) (mode string, cropX, cropY, cropW, cropH int) {
	if w <= 0 || h <= 0 {
		return models.AspectSquare, 0, 0, w, h
	}
	ratio := float64(w) / float64(h)
	bestMode := models.AspectSquare
	bestRatio := 1.0
	bestDist := absFloat(ratio - 1.0)
	for _, r := range allowedRatios {
		d := absFloat(ratio - r.ratio)
		if d < bestDist {
			bestDist = d
			bestRatio = r.ratio
			bestMode = r.name
		}
	}

	if ratio > bestRatio {
		cropH = h
		cropW = int(float64(h) * bestRatio)
		cropX = (w - cropW) / 2
	} else {
		cropW = w
		cropH = int(float64(w) / bestRatio)
		cropY = (h - cropH) / 2
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}
	return bestMode, cropX, cropY, cropW, cropH
}

func cropToRect(src image.Image, x, y, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if scaleH := float64(maxHeight) / float64(h); scaleH < scale {
		scale = scaleH
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func buildDeterministicImageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
